// Package media prefetches the photos and videos referenced by hike
// annotations into a Store.
//
// Two chains run side by side, one per media kind. Each chain walks the
// annotations in order and the places of each annotation in order, fetching
// one asset at a time. Assets already present in the store are skipped.
// Failures are logged and the chain moves on; nothing is retried.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"trailtutor/internal/enrich"
	"trailtutor/internal/keys"
	"trailtutor/internal/models"
)

// Report tallies what a chain did with each asset it visited.
type Report struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (r Report) Processed() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// Result is the combined outcome of both chains.
type Result struct {
	Photo Report
	Video Report
}

// ProgressFunc is called after every asset with the chain's running report.
// It is called from the chain goroutines, so photo and video callbacks can
// arrive concurrently.
type ProgressFunc func(kind models.MediaKind, r Report)

type Prefetcher struct {
	client     *http.Client
	store      Store
	userAgent  string
	onProgress ProgressFunc
}

type Option func(*Prefetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Prefetcher) { p.client = c }
}

func WithProgress(fn ProgressFunc) Option {
	return func(p *Prefetcher) { p.onProgress = fn }
}

func WithUserAgent(ua string) Option {
	return func(p *Prefetcher) { p.userAgent = ua }
}

func NewPrefetcher(store Store, opts ...Option) *Prefetcher {
	p := &Prefetcher{
		client:    http.DefaultClient,
		store:     store,
		userAgent: "trailtutor-prefetch/1.0",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type job struct {
	annotations []models.HikeAnnotation
	result      Result
}

// Run starts prefetching in the background and calls onComplete exactly once
// after both chains have finished.
func (p *Prefetcher) Run(ctx context.Context, annotations []models.HikeAnnotation, onComplete func(Result)) {
	go func() {
		res := p.Prefetch(ctx, annotations)
		if onComplete != nil {
			onComplete(res)
		}
	}()
}

// Prefetch is the blocking form of Run.
func (p *Prefetcher) Prefetch(ctx context.Context, annotations []models.HikeAnnotation) Result {
	j := &job{annotations: annotations}
	pipeline := enrich.NewPipeline(
		enrich.NamedStage("prefetch", p.chain(models.Photo), p.chain(models.Video)),
	)
	pipeline.Run(ctx, j)
	log.Printf("Prefetch finished: photo %+v, video %+v", j.result.Photo, j.result.Video)
	return j.result
}

// chain returns the step that walks every asset of one kind. Each chain
// writes only its own Report, so the two steps never share a field.
func (p *Prefetcher) chain(kind models.MediaKind) enrich.Step[job] {
	return func(ctx context.Context, j *job) error {
		report := &j.result.Photo
		if kind == models.Video {
			report = &j.result.Video
		}
		for _, a := range j.annotations {
			for _, place := range a.Places {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("%s chain stopped: %w", kind, err)
				}
				raw := place.URL(kind)
				if raw == "" {
					continue
				}
				skipped, err := p.fetch(ctx, raw)
				switch {
				case err != nil:
					report.Failed++
					log.Printf("Error fetching %s %q for point %d: %v", kind, raw, a.Order, err)
				case skipped:
					report.Skipped++
				default:
					report.Downloaded++
				}
				if p.onProgress != nil {
					p.onProgress(kind, *report)
				}
			}
		}
		return nil
	}
}

var errNoFilename = errors.New("no file name in url")

// fetch downloads raw into the store unless it is already there. It reports
// skipped=true when nothing had to be downloaded.
func (p *Prefetcher) fetch(ctx context.Context, raw string) (skipped bool, err error) {
	name := keys.Filename(raw)
	if name == "" {
		return false, errNoFilename
	}

	exists, err := p.store.Exists(ctx, name)
	if err != nil {
		log.Printf("Could not check cache for %s, downloading anyway: %v", name, err)
	}
	if exists {
		return true, nil
	}

	link := keys.DownloadURL(raw)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(p.store.TempDir(), name+".*.part")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}

	if err := p.store.Commit(ctx, tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	log.Printf("File %s moved to cache as %s", link, name)
	return false, nil
}
