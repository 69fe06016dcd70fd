package models

import "github.com/paulmach/orb"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts to an orb point, which is ordered longitude first.
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func FromPoint(p orb.Point) Coordinates {
	return Coordinates{Lat: p.Lat(), Lon: p.Lon()}
}

// Route is the ordered sequence of coordinates that makes up the trail line.
type Route []Coordinates

func (r Route) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(r))
	for _, c := range r {
		ls = append(ls, c.Point())
	}
	return ls
}
