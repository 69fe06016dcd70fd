package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// NtfyNotifier pushes notifications to an ntfy-compatible server.
type NtfyNotifier struct {
	client  *http.Client
	baseURL string
	topic   string
}

func NewNtfyNotifier(baseURL, topic string) *NtfyNotifier {
	return &NtfyNotifier{
		client:  http.DefaultClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		topic:   topic,
	}
}

func (s *NtfyNotifier) Notify(ctx context.Context, n Notification) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+s.topic, strings.NewReader(n.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", n.Title)
	req.Header.Set("Tags", n.Category)
	req.Header.Set("X-Point-Number", strconv.Itoa(n.PointNumber))

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return nil
}
