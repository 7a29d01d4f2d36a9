package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nao1215/prodscout/internal/model"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream writes progress events in the server-sent events format.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	now     func() time.Time
}

// newEventStream writes the stream headers. It fails before writing
// anything if w cannot flush.
func newEventStream(w http.ResponseWriter, now func() time.Time) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher, now: now}, nil
}

// send writes one event and flushes it to the client.
func (s *eventStream) send(stage, message string) error {
	data, err := json.Marshal(model.NewProgressEvent(stage, message, s.now()))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
