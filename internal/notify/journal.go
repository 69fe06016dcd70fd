package notify

import (
	"context"

	"trailtutor/internal/storage"
)

type ArrivalRecorder interface {
	Record(ctx context.Context, a storage.Arrival) error
}

// JournalNotifier records each notification as an arrival row.
type JournalNotifier struct {
	journal ArrivalRecorder
}

func NewJournalNotifier(j ArrivalRecorder) *JournalNotifier {
	return &JournalNotifier{journal: j}
}

func (j *JournalNotifier) Notify(ctx context.Context, n Notification) error {
	return j.journal.Record(ctx, storage.Arrival{
		Hike:        n.Hike,
		PointNumber: n.PointNumber,
		Name:        n.Name,
		Lat:         n.Lat,
		Lon:         n.Lon,
		ReachedAt:   n.Time,
	})
}
