// Package hike decodes trail GeoJSON into a models.Hike: LineString features
// form the route, Point features carrying properties become numbered
// annotations.
package hike

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"trailtutor/internal/models"
)

// Load reads and decodes a GeoJSON file. The hike is named after the file.
func Load(path string) (*models.Hike, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hike file: %w", err)
	}
	h, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	h.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return h, nil
}

// Decode builds a hike from a GeoJSON FeatureCollection.
func Decode(data []byte) (*models.Hike, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	h := &models.Hike{}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.LineString:
			h.Route = appendLine(h.Route, g)
		case orb.MultiLineString:
			for _, ls := range g {
				h.Route = appendLine(h.Route, ls)
			}
		case orb.Point:
			if len(f.Properties) == 0 {
				continue
			}
			h.Annotations = append(h.Annotations, annotation(g, f.Properties))
		}
	}

	sort.SliceStable(h.Annotations, func(i, j int) bool {
		return h.Annotations[i].Order < h.Annotations[j].Order
	})
	return h, nil
}

func appendLine(route models.Route, ls orb.LineString) models.Route {
	for _, p := range ls {
		route = append(route, models.FromPoint(p))
	}
	return route
}

func annotation(p orb.Point, props geojson.Properties) models.HikeAnnotation {
	a := models.HikeAnnotation{
		Order:       order(props["order"]),
		Coordinates: models.FromPoint(p),
	}
	raw, ok := props["places"]
	if !ok || raw == nil {
		return a
	}
	places, err := decodePlaces(raw)
	if err != nil {
		log.Printf("Error decoding places of annotation %d: %v", a.Order, err)
		return a
	}
	a.Places = places
	return a
}

// order accepts the numeric forms a JSON decoder may produce.
func order(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	}
	return 0
}

func decodePlaces(raw any) ([]models.Place, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var places []models.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// Bound returns the bounding box of the route.
func Bound(h *models.Hike) orb.Bound {
	return h.Route.LineString().Bound()
}
