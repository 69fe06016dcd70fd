package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"trailtutor/internal/models"
)

type mediaServer struct {
	mu       sync.Mutex
	requests map[string][]string // first path segment -> requested files in order
}

func newMediaServer(t *testing.T) (*httptest.Server, *mediaServer) {
	ms := &mediaServer{requests: make(map[string][]string)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dl") != "1" {
			t.Errorf("request without download marker: %s", r.URL.String())
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		ms.mu.Lock()
		ms.requests[parts[0]] = append(ms.requests[parts[0]], parts[len(parts)-1])
		ms.mu.Unlock()
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("content of " + r.URL.Path))
	}))
	return server, ms
}

func (ms *mediaServer) requested(kind string) []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.requests[kind]...)
}

func testAnnotations(base string) []models.HikeAnnotation {
	return []models.HikeAnnotation{
		{Order: 1, Places: []models.Place{
			{Name: "Trailhead", Photo: base + "/photo/a/start.jpg?dl=0", Video: base + "/video/a/start.mp4?dl=0"},
		}},
		{Order: 2, Places: []models.Place{
			{Name: "Cairn", Photo: base + "/photo/b/missing.jpg", Video: ""},
			{Name: "Ridge", Photo: base + "/photo/c/ridge.jpg", Video: base + "/video/c/ridge.mp4"},
		}},
		{Order: 3, Places: []models.Place{
			{Name: "Summit", Photo: "", Video: base + "/video/d/summit.mp4"},
		}},
	}
}

func TestPrefetcher_Prefetch(t *testing.T) {
	server, ms := newMediaServer(t)
	defer server.Close()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	annotations := testAnnotations(server.URL)

	var mu sync.Mutex
	progressCalls := map[models.MediaKind]int{}
	p := NewPrefetcher(store, WithProgress(func(kind models.MediaKind, _ Report) {
		mu.Lock()
		progressCalls[kind]++
		mu.Unlock()
	}))

	res := p.Prefetch(context.Background(), annotations)

	tests := []struct {
		name string
		got  Report
		want Report
	}{
		{"photo", res.Photo, Report{Downloaded: 2, Failed: 1}},
		{"video", res.Video, Report{Downloaded: 3}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s report = %+v, want %+v", tt.name, tt.got, tt.want)
		}
	}

	wantOrder := map[string][]string{
		"photo": {"start.jpg", "missing.jpg", "ridge.jpg"},
		"video": {"start.mp4", "ridge.mp4", "summit.mp4"},
	}
	for kind, want := range wantOrder {
		got := ms.requested(kind)
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("%s requests = %v, want %v", kind, got, want)
		}
	}

	for _, name := range []string{"start.jpg", "ridge.jpg", "start.mp4", "ridge.mp4", "summit.mp4"} {
		if _, err := os.Stat(store.Path(name)); err != nil {
			t.Errorf("expected %s in cache: %v", name, err)
		}
	}
	if _, err := os.Stat(store.Path("missing.jpg")); !os.IsNotExist(err) {
		t.Errorf("failed download left a file behind: %v", err)
	}
	if progressCalls[models.Photo] != 3 || progressCalls[models.Video] != 3 {
		t.Errorf("progress calls = %v, want 3 per kind", progressCalls)
	}

	entries, err := os.ReadDir(store.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty: %d entries", len(entries))
	}
}

func TestPrefetcher_SkipsCachedFiles(t *testing.T) {
	server, ms := newMediaServer(t)
	defer server.Close()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	annotations := testAnnotations(server.URL)
	p := NewPrefetcher(store)
	p.Prefetch(context.Background(), annotations)

	firstPhoto := len(ms.requested("photo"))
	firstVideo := len(ms.requested("video"))

	res := p.Prefetch(context.Background(), annotations)
	if res.Photo != (Report{Skipped: 2, Failed: 1}) {
		t.Errorf("second photo report = %+v", res.Photo)
	}
	if res.Video != (Report{Skipped: 3}) {
		t.Errorf("second video report = %+v", res.Video)
	}
	// only the missing photo is requested again
	if got := len(ms.requested("photo")) - firstPhoto; got != 1 {
		t.Errorf("photo re-requests = %d, want 1", got)
	}
	if got := len(ms.requested("video")) - firstVideo; got != 0 {
		t.Errorf("video re-requests = %d, want 0", got)
	}
}

func TestPrefetcher_RunCallsCompletionOnce(t *testing.T) {
	server, _ := newMediaServer(t)
	defer server.Close()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan Result, 2)
	NewPrefetcher(store).Run(context.Background(), testAnnotations(server.URL), func(r Result) {
		done <- r
	})

	select {
	case r := <-done:
		if r.Photo.Processed() != 3 || r.Video.Processed() != 3 {
			t.Errorf("unexpected result %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback not called")
	}
	select {
	case <-done:
		t.Fatal("completion callback called twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPrefetcher_UnparsableURLDoesNotStallChain(t *testing.T) {
	server, _ := newMediaServer(t)
	defer server.Close()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	annotations := []models.HikeAnnotation{{Order: 1, Places: []models.Place{
		{Photo: "https://bad.test/%zz.jpg"},
		{Photo: server.URL + "/photo/e/after.jpg"},
	}}}

	res := NewPrefetcher(store).Prefetch(context.Background(), annotations)
	if res.Photo != (Report{Downloaded: 1, Failed: 1}) {
		t.Errorf("photo report = %+v", res.Photo)
	}
}

func TestPrefetcher_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewPrefetcher(store).Prefetch(ctx, testAnnotations("http://unused.test"))
	if res.Photo.Processed() != 0 || res.Video.Processed() != 0 {
		t.Errorf("expected no work after cancellation, got %+v", res)
	}
}

func TestCountAndProgress(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"start.jpg", "summit.mp4"} {
		if err := os.WriteFile(store.Path(name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	annotations := testAnnotations("https://media.test")
	ctx := context.Background()

	photo := Count(ctx, store, annotations, models.Photo)
	video := Count(ctx, store, annotations, models.Video)

	if photo != (Counter{Loaded: 1, Total: 3}) {
		t.Errorf("photo counter = %v", photo)
	}
	if video != (Counter{Loaded: 1, Total: 3}) {
		t.Errorf("video counter = %v", video)
	}
	if got := Progress(photo, video); got != 2.0/6.0 {
		t.Errorf("Progress = %v, want %v", got, 2.0/6.0)
	}
	if got := Progress(Counter{}, Counter{}); got != 0 {
		t.Errorf("Progress of empty counters = %v, want 0", got)
	}
	if photo.String() != "1/3" {
		t.Errorf("String = %q", photo.String())
	}
}
