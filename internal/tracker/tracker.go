// Package tracker follows a hiker along a trail. Every location fix is
// checked against the vertices of the hike's route; the first time the hiker comes within
// the threshold of a waypoint a notification naming that point is sent.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb/geo"

	"trailtutor/internal/models"
	"trailtutor/internal/notify"
)

// DefaultThreshold is the arrival radius in meters.
const DefaultThreshold = 10.0

const (
	notificationTitle    = "Trail Tutor"
	notificationCategory = "alarm"
)

// Waypoint is a numbered point of interest the hiker can arrive at.
type Waypoint struct {
	Order       int
	Coordinates models.Coordinates
	Name        string
}

// Waypoints derives the proximity targets from the route vertices. Vertex i
// takes its order and name from the annotation at the same index; vertices
// past the last annotation are numbered by position and left unnamed.
func Waypoints(h *models.Hike) []Waypoint {
	wps := make([]Waypoint, 0, len(h.Route))
	for i, c := range h.Route {
		wp := Waypoint{Order: i + 1, Coordinates: c}
		if i < len(h.Annotations) {
			a := h.Annotations[i]
			wp.Order = a.Order
			wp.Name = a.Name()
		}
		wps = append(wps, wp)
	}
	return wps
}

// Arrival is reported for every waypoint reached by an update.
type Arrival struct {
	Waypoint Waypoint
	Distance float64
	Fix      models.Fix
}

type Tracker struct {
	hike      string
	route     models.Route
	waypoints []Waypoint
	threshold float64
	notifier  notify.Notifier

	mu       sync.Mutex
	attended map[models.Coordinates]struct{}
	last     models.Fix
}

type Option func(*Tracker)

func WithThreshold(meters float64) Option {
	return func(t *Tracker) {
		if meters > 0 {
			t.threshold = meters
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func New(h *models.Hike, opts ...Option) *Tracker {
	t := &Tracker{
		hike:      h.Name,
		route:     h.Route,
		waypoints: Waypoints(h),
		threshold: DefaultThreshold,
		notifier:  notify.LogNotifier{},
		attended:  make(map[models.Coordinates]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update checks fix against every route vertex and notifies each newly
// reached one. Vertices that share coordinates are attended together, so only
// the first of them fires.
func (t *Tracker) Update(ctx context.Context, fix models.Fix) []Arrival {
	here := fix.Coordinates().Point()

	t.mu.Lock()
	t.last = fix
	var arrivals []Arrival
	for _, wp := range t.waypoints {
		d := geo.Distance(here, wp.Coordinates.Point())
		if d >= t.threshold {
			continue
		}
		if _, seen := t.attended[wp.Coordinates]; seen {
			continue
		}
		t.attended[wp.Coordinates] = struct{}{}
		arrivals = append(arrivals, Arrival{Waypoint: wp, Distance: d, Fix: fix})
	}
	t.mu.Unlock()

	for _, a := range arrivals {
		n := t.notification(a)
		if err := t.notifier.Notify(ctx, n); err != nil {
			log.Printf("Notification Error for point %d: %v", a.Waypoint.Order, err)
		}
	}
	return arrivals
}

func (t *Tracker) notification(a Arrival) notify.Notification {
	body := fmt.Sprintf("You have reached %d point of the hike", a.Waypoint.Order)
	if a.Waypoint.Name != "" {
		body += " - " + a.Waypoint.Name
	}
	when := a.Fix.Time
	if when.IsZero() {
		when = time.Now()
	}
	return notify.Notification{
		Title:       notificationTitle,
		Body:        body,
		PointNumber: a.Waypoint.Order,
		Category:    notificationCategory,
		Badge:       1,
		Hike:        t.hike,
		Lat:         a.Waypoint.Coordinates.Lat,
		Lon:         a.Waypoint.Coordinates.Lon,
		Name:        a.Waypoint.Name,
		Time:        when,
	}
}

// Run feeds every fix from the channel to Update until the channel closes or
// ctx is done. It returns the number of arrivals.
func (t *Tracker) Run(ctx context.Context, fixes <-chan models.Fix) int {
	total := 0
	for {
		select {
		case <-ctx.Done():
			return total
		case fix, ok := <-fixes:
			if !ok {
				return total
			}
			total += len(t.Update(ctx, fix))
		}
	}
}

// Attended reports how many waypoint locations have been reached so far.
func (t *Tracker) Attended() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.attended)
}

// Visited reports whether the waypoint at c has already fired.
func (t *Tracker) Visited(c models.Coordinates) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.attended[c]
	return ok
}

// Last returns the most recent fix passed to Update.
func (t *Tracker) Last() models.Fix {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
