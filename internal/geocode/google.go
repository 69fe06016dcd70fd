package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Google resolves names with the Google Maps reverse geocoding API.
type Google struct {
	client *maps.Client
}

func NewGoogle(apiKey string, opts ...maps.ClientOption) (*Google, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &Google{client: client}, nil
}

var preferredTypes = []string{"natural_feature", "park", "point_of_interest", "route", "locality"}

func (g *Google) ReverseName(ctx context.Context, lat, lon float64) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no name for %v,%v", lat, lon)
	}
	return pickName(results), nil
}

func pickName(results []maps.GeocodingResult) string {
	for _, want := range preferredTypes {
		for _, r := range results {
			for _, c := range r.AddressComponents {
				for _, t := range c.Types {
					if t == want {
						return c.LongName
					}
				}
			}
		}
	}
	return results[0].FormattedAddress
}
