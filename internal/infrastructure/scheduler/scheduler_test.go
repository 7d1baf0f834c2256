package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := s.Add("every now and then", "sweep", func(context.Context) error { return nil }); err == nil {
		t.Error("expected invalid schedule to be rejected")
	}
	if err := s.Add("@every 5m", "sweep", func(context.Context) error { return nil }); err != nil {
		t.Errorf("expected valid schedule, got %v", err)
	}
}

func TestJobLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	s := New(slog.New(slog.NewTextHandler(&buf, nil)))

	ran := false
	s.job("sweep", func(ctx context.Context) error {
		ran = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected job context to carry a deadline")
		}
		return errors.New("db unavailable")
	})()

	if !ran {
		t.Fatal("expected job to run")
	}
	if !strings.Contains(buf.String(), "job failed") || !strings.Contains(buf.String(), "db unavailable") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestStartStop(t *testing.T) {
	s := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	s.Start()
	s.Stop(context.Background())
}
