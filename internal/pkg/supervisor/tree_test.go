package supervisor

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingService struct {
	runs atomic.Int32
	fail bool
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.runs.Add(1)
	if s.fail && n == 1 {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return "counting" }

func TestTreeRestartsFailedService(t *testing.T) {
	var buf bytes.Buffer
	tree := NewTree(zerolog.New(&buf), TreeConfig{FailureBackoff: 10 * time.Millisecond})

	svc := &countingService{fail: true}
	tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if got := svc.runs.Load(); got < 2 {
		t.Fatalf("service ran %d times, want a restart", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("counting")) {
		t.Errorf("expected the failure to be logged, got %s", buf.String())
	}
}
