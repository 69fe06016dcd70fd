// Package session runs one hike map session: media prefetching in the
// background while location fixes are tracked against the trail.
package session

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"trailtutor/internal/media"
	"trailtutor/internal/models"
	"trailtutor/internal/tracker"
)

// Summary is what a finished session reports.
type Summary struct {
	Prefetch media.Result
	Photo    media.Counter
	Video    media.Counter
	Arrivals int
	Attended int
}

type Session struct {
	hike       *models.Hike
	store      media.Store
	prefetcher *media.Prefetcher
	tracker    *tracker.Tracker

	// OnPrefetchDone is called once when both media chains have finished,
	// before Run returns.
	OnPrefetchDone func(media.Result)
}

func New(h *models.Hike, store media.Store, p *media.Prefetcher, t *tracker.Tracker) *Session {
	return &Session{hike: h, store: store, prefetcher: p, tracker: t}
}

// Counters reports the current loaded/total media counters.
func (s *Session) Counters(ctx context.Context) (photo, video media.Counter) {
	photo = media.Count(ctx, s.store, s.hike.Annotations, models.Photo)
	video = media.Count(ctx, s.store, s.hike.Annotations, models.Video)
	return photo, video
}

// Run prefetches media and tracks fixes concurrently. It returns when the
// fix channel is closed (or ctx is done) and prefetching has completed.
func (s *Session) Run(ctx context.Context, fixes <-chan models.Fix) (Summary, error) {
	var sum Summary
	photo, video := s.Counters(ctx)
	log.Printf("Hike %q: %d route points, %d waypoints, photo %s, video %s",
		s.hike.Name, len(s.hike.Route), len(s.hike.Annotations), photo, video)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		done := make(chan media.Result, 1)
		s.prefetcher.Run(gctx, s.hike.Annotations, func(r media.Result) { done <- r })
		sum.Prefetch = <-done
		if s.OnPrefetchDone != nil {
			s.OnPrefetchDone(sum.Prefetch)
		}
		return nil
	})
	g.Go(func() error {
		sum.Arrivals = s.tracker.Run(gctx, fixes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return sum, err
	}

	sum.Photo, sum.Video = s.Counters(context.WithoutCancel(ctx))
	sum.Attended = s.tracker.Attended()
	log.Printf("Session finished: %d arrivals, photo %s, video %s", sum.Arrivals, sum.Photo, sum.Video)
	return sum, ctx.Err()
}
