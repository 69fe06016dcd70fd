package tracker

import (
	"github.com/paulmach/orb/geo"

	"trailtutor/internal/models"
)

// RouteProgress places a fix on the trail line.
type RouteProgress struct {
	NearestIndex int     // index of the closest route vertex, -1 without a route
	Along        float64 // meters from the trail start to that vertex
	Total        float64 // trail length in meters
	OffRoute     float64 // meters from the fix to that vertex
}

// Fraction is Along/Total, 0 for an empty or zero-length route.
func (p RouteProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return p.Along / p.Total
}

func (t *Tracker) Progress(fix models.Fix) RouteProgress {
	return ProgressOn(t.route, fix)
}

// ProgressOn computes progress against an arbitrary route.
func ProgressOn(route models.Route, fix models.Fix) RouteProgress {
	p := RouteProgress{NearestIndex: -1}
	if len(route) == 0 {
		return p
	}
	here := fix.Coordinates().Point()

	along := 0.0
	for i, c := range route {
		if i > 0 {
			along += geo.Distance(route[i-1].Point(), c.Point())
		}
		d := geo.Distance(here, c.Point())
		if p.NearestIndex == -1 || d < p.OffRoute {
			p.NearestIndex = i
			p.OffRoute = d
			p.Along = along
		}
	}
	p.Total = along
	return p
}
