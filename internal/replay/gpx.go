// Package replay turns a recorded GPX track into a stream of location fixes,
// standing in for a live GPS receiver.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"trailtutor/internal/models"
)

// Fixes extracts every track point of every segment, in file order.
func Fixes(g *gpx.GPX) []models.Fix {
	var fixes []models.Fix
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				fixes = append(fixes, models.Fix{Lat: p.Latitude, Lon: p.Longitude, Time: p.Timestamp})
			}
		}
	}
	return fixes
}

func LoadFile(path string) ([]models.Fix, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX file: %w", err)
	}
	return Fixes(g), nil
}

func LoadBytes(data []byte) ([]models.Fix, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX data: %w", err)
	}
	return Fixes(g), nil
}

// Player paces fixes by the gaps between their timestamps divided by Speed.
// A Speed of 0 or less sends fixes as fast as the reader takes them.
type Player struct {
	Speed float64
}

// Play streams fixes on the returned channel, which is closed when all fixes
// have been sent or ctx is done.
func (p Player) Play(ctx context.Context, fixes []models.Fix) <-chan models.Fix {
	out := make(chan models.Fix)
	go func() {
		defer close(out)
		for i, f := range fixes {
			if i > 0 && p.Speed > 0 {
				if wait := p.gap(fixes[i-1], f); wait > 0 {
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return
					}
				}
			}
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (p Player) gap(prev, next models.Fix) time.Duration {
	if prev.Time.IsZero() || next.Time.IsZero() {
		return 0
	}
	return time.Duration(float64(next.Time.Sub(prev.Time)) / p.Speed)
}
