// Package notify delivers arrival notifications to the hiker.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Notification mirrors a local push notification: a title and body shown to
// the user plus the point number used to open the point preview.
type Notification struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PointNumber int       `json:"pointNumber"`
	Category    string    `json:"category"`
	Badge       int       `json:"badge"`
	Hike        string    `json:"hike,omitempty"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Name        string    `json:"name,omitempty"`
	Time        time.Time `json:"time"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n Notification) error

func (f Func) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("[notify] %s: %s (point %d)", n.Title, n.Body, n.PointNumber)
	return nil
}

// Multi delivers to every notifier, even after one fails, and joins the errors.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(ctx context.Context, n Notification) error {
		var errs []error
		for _, nt := range notifiers {
			if err := nt.Notify(ctx, n); err != nil {
				errs = append(errs, fmt.Errorf("%T: %w", nt, err))
			}
		}
		return errors.Join(errs...)
	})
}
