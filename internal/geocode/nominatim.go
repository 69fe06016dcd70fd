// Package geocode resolves coordinates to place names for waypoints that
// carry no place of their own.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Resolver looks up a name for a coordinate.
type Resolver interface {
	ReverseName(ctx context.Context, lat, lon float64) (string, error)
}

// NominatimResponse is the subset of the reverse endpoint's jsonv2 reply we use.
type NominatimResponse struct {
	PlaceID     int64  `json:"place_id"`
	OsmType     string `json:"osm_type"`
	OsmID       int64  `json:"osm_id"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Peak    string `json:"peak"`
		Natural string `json:"natural"`
		Tourism string `json:"tourism"`
		Road    string `json:"road"`
		Village string `json:"village"`
		Town    string `json:"town"`
		City    string `json:"city"`
	} `json:"address"`
}

type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewNominatim() *Nominatim {
	return &Nominatim{
		httpClient: http.DefaultClient,
		baseURL:    "https://nominatim.openstreetmap.org",
		userAgent:  "trailtutor-geocoder/1.0",
	}
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*NominatimResponse, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("zoom", "16")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var out NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("nominatim: %s", out.Error)
	}
	return &out, nil
}

// ReverseName prefers the feature's own name, then natural or tourism
// landmarks, then the nearest settlement.
func (n *Nominatim) ReverseName(ctx context.Context, lat, lon float64) (string, error) {
	r, err := n.Reverse(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	for _, candidate := range []string{
		r.Name, r.Address.Peak, r.Address.Natural, r.Address.Tourism,
		r.Address.Road, r.Address.Village, r.Address.Town, r.Address.City,
	} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no name for %v,%v", lat, lon)
}
