package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"trailtutor/internal/storage"
)

var sample = Notification{
	Title:       "Trail Tutor",
	Body:        "You have reached 2 point of the hike - Summit",
	PointNumber: 2,
	Category:    "alarm",
	Badge:       1,
	Hike:        "saddleback",
	Lat:         34.62,
	Lon:         -117.92,
	Name:        "Summit",
	Time:        time.Date(2022, 4, 12, 9, 0, 0, 0, time.UTC),
}

type mockWriter struct {
	msgs []kafka.Message
	err  error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	w := &mockWriter{}
	if err := NewKafkaNotifier(w).Notify(context.Background(), sample); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "saddleback/2" {
		t.Errorf("key = %q", w.msgs[0].Key)
	}
	var got Notification
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.Body != sample.Body || got.PointNumber != 2 {
		t.Errorf("payload = %+v", got)
	}
}

func TestNtfyNotifier(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"accepted", http.StatusOK, false},
		{"rejected", http.StatusTooManyRequests, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotTitle, gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotTitle = r.Header.Get("Title")
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewNtfyNotifier(server.URL+"/", "trail-tutor").Notify(context.Background(), sample)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Notify error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotPath != "/trail-tutor" || gotTitle != "Trail Tutor" || gotBody != sample.Body {
				t.Errorf("request = %q %q %q", gotPath, gotTitle, gotBody)
			}
		})
	}
}

type recorder struct{ arrivals []storage.Arrival }

func (r *recorder) Record(_ context.Context, a storage.Arrival) error {
	r.arrivals = append(r.arrivals, a)
	return nil
}

func TestJournalNotifier(t *testing.T) {
	r := &recorder{}
	if err := NewJournalNotifier(r).Notify(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	want := storage.Arrival{Hike: "saddleback", PointNumber: 2, Name: "Summit", Lat: 34.62, Lon: -117.92, ReachedAt: sample.Time}
	if len(r.arrivals) != 1 || r.arrivals[0] != want {
		t.Errorf("arrivals = %+v", r.arrivals)
	}
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	var delivered int
	ok := Func(func(context.Context, Notification) error { delivered++; return nil })
	bad := &mockWriter{err: errors.New("broker down")}

	err := Multi(ok, NewKafkaNotifier(bad), ok, LogNotifier{}).Notify(context.Background(), sample)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
	if err := Multi().Notify(context.Background(), sample); err != nil {
		t.Errorf("empty Multi returned %v", err)
	}
}
