package media

import (
	"context"
	"fmt"

	"trailtutor/internal/keys"
	"trailtutor/internal/models"
)

// Counter is the loaded/total pair shown next to each media kind.
type Counter struct {
	Loaded int
	Total  int
}

func (c Counter) String() string {
	return fmt.Sprintf("%d/%d", c.Loaded, c.Total)
}

// Count reports how many assets of kind the annotations reference and how
// many of those are already in the store.
func Count(ctx context.Context, store Store, annotations []models.HikeAnnotation, kind models.MediaKind) Counter {
	var c Counter
	for _, a := range annotations {
		for _, place := range a.Places {
			raw := place.URL(kind)
			if raw == "" {
				continue
			}
			c.Total++
			name := keys.Filename(raw)
			if name == "" {
				continue
			}
			if ok, err := store.Exists(ctx, name); err == nil && ok {
				c.Loaded++
			}
		}
	}
	return c
}

// Progress is the overall loaded fraction across both kinds, 0 when there
// is nothing to load.
func Progress(photo, video Counter) float64 {
	total := photo.Total + video.Total
	if total == 0 {
		return 0
	}
	return float64(photo.Loaded+video.Loaded) / float64(total)
}
