package store

import (
	"context"
	"time"

	"github.com/Afhammirza1/sharingapp/internal/metrics"
	"github.com/Afhammirza1/sharingapp/internal/models"
)

// instrumented records latency for every call into the wrapped store.
type instrumented struct {
	next RoomStore
}

// Instrument wraps a store so each operation is observed in
// sharenear_store_latency_seconds.
func Instrument(s RoomStore) RoomStore {
	if s == nil {
		return nil
	}
	return &instrumented{next: s}
}

func (s *instrumented) observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(s.next.Backend(), op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) Backend() string { return s.next.Backend() }

func (s *instrumented) Close() error { return s.next.Close() }

func (s *instrumented) Ping(ctx context.Context) error {
	defer s.observe("ping", time.Now())
	return s.next.Ping(ctx)
}

func (s *instrumented) Probe(ctx context.Context) (*ProbeResult, error) {
	defer s.observe("probe", time.Now())
	return s.next.Probe(ctx)
}

func (s *instrumented) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	defer s.observe("create_room", time.Now())
	return s.next.CreateRoom(ctx, caller, code)
}

func (s *instrumented) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	defer s.observe("get_room", time.Now())
	return s.next.GetRoom(ctx, code)
}

func (s *instrumented) AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error) {
	defer s.observe("append_file", time.Now())
	return s.next.AppendFile(ctx, caller, code, upload)
}

func (s *instrumented) AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error) {
	defer s.observe("add_message", time.Now())
	return s.next.AddMessage(ctx, caller, code, text, sender)
}

func (s *instrumented) ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error) {
	defer s.observe("list_messages", time.Now())
	return s.next.ListMessages(ctx, code, limit)
}

func (s *instrumented) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	defer s.observe("add_signal", time.Now())
	return s.next.AddSignal(ctx, caller, code, payload)
}
