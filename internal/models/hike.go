package models

import "time"

// Place is a point-of-interest entry attached to an annotation.
type Place struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Video string `json:"video"`
}

// HikeAnnotation is a numbered pin on the trail carrying one or more places.
type HikeAnnotation struct {
	Order       int         `json:"order"`
	Coordinates Coordinates `json:"coordinates"`
	Places      []Place     `json:"places"`
}

// Name returns the name of the first place, or "" when the annotation has none.
func (a HikeAnnotation) Name() string {
	if len(a.Places) == 0 {
		return ""
	}
	return a.Places[0].Name
}

type Hike struct {
	Name        string           `json:"name"`
	Route       Route            `json:"route"`
	Annotations []HikeAnnotation `json:"annotations"`
}

// Fix is a single location update from a GPS source.
type Fix struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Accuracy float64   `json:"accuracy,omitempty"`
	Time     time.Time `json:"time"`
}

func (f Fix) Coordinates() Coordinates {
	return Coordinates{Lat: f.Lat, Lon: f.Lon}
}

type MediaKind string

const (
	Photo MediaKind = "photo"
	Video MediaKind = "video"
)

// URL returns the asset URL of the given kind.
func (p Place) URL(kind MediaKind) string {
	if kind == Video {
		return p.Video
	}
	return p.Photo
}
