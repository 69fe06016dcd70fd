// Package service adapts a Kafka message source into a typed stream. The hike
// session uses it to turn the location topic into a channel of fixes for the
// tracker.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"trailtutor/internal/models"
)

// Iterator consumes messages from a MessageIterator, decodes each message
// value with a DecodeFunc, and yields the decoded items on a channel.
//
// The Iterator does not manage the lifecycle of the underlying message source;
// callers should start/stop their consumer outside.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
	}
}

// Items starts a goroutine that:
//  1. Receives messages from the underlying MessageIterator
//  2. Decodes each message value with the DecodeFunc
//  3. Emits the decoded item on the returned channel
//  4. Commits the message offset once the item has been taken
//
// Undecodable messages are logged, committed and skipped so that a poison
// message does not block the partition. The output channel is closed when the
// underlying Messages() channel is closed or ctx is done.
func (it *Iterator[T]) Items(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			item, err := it.decode(msg.Value)
			if err != nil {
				log.Printf("Error decoding message at offset %d: %v", msg.Offset, err)
			} else {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()
	return out
}

var errNoPosition = errors.New("fix has no position")

// fixMessage mirrors models.Fix with pointer coordinates so that a missing
// field can be told apart from a zero one.
type fixMessage struct {
	Lat      *float64  `json:"lat"`
	Lon      *float64  `json:"lon"`
	Accuracy float64   `json:"accuracy"`
	Time     time.Time `json:"time"`
}

// DecodeFix decodes a JSON location fix. Both lat and lon must be present.
func DecodeFix(value []byte) (models.Fix, error) {
	var m fixMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return models.Fix{}, err
	}
	if m.Lat == nil || m.Lon == nil {
		return models.Fix{}, errNoPosition
	}
	return models.Fix{Lat: *m.Lat, Lon: *m.Lon, Accuracy: m.Accuracy, Time: m.Time}, nil
}
