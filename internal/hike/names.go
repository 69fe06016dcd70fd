package hike

import (
	"context"
	"log"

	"trailtutor/internal/models"
)

// NameResolver looks up a human-readable name for a coordinate.
type NameResolver interface {
	ReverseName(ctx context.Context, lat, lon float64) (string, error)
}

// ResolveNames gives every annotation without places a single place named
// after its reverse-geocoded location. Lookup failures are logged and the
// annotation is left unchanged. It returns the number of annotations named.
func ResolveNames(ctx context.Context, h *models.Hike, resolver NameResolver) int {
	named := 0
	for i := range h.Annotations {
		a := &h.Annotations[i]
		if len(a.Places) > 0 {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		name, err := resolver.ReverseName(ctx, a.Coordinates.Lat, a.Coordinates.Lon)
		if err != nil {
			log.Printf("Error resolving name for point %d: %v", a.Order, err)
			continue
		}
		if name == "" {
			continue
		}
		a.Places = []models.Place{{Name: name}}
		named++
	}
	return named
}
