package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSweeper struct {
	calls  int
	maxAge time.Duration
	err    error
}

func (f *fakeSweeper) Sweep(maxAge time.Duration, _ time.Time) (int, error) {
	f.calls++
	f.maxAge = maxAge
	return 2, f.err
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeSweeper{}, "not a schedule", time.Hour, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestStartDisabled(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(sweeper, "", time.Hour, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-s.Stop().Done()
	if sweeper.calls != 0 {
		t.Fatal("disabled scheduler swept")
	}
}

func TestSweepArtifacts(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(sweeper, "@every 1h", 30*time.Minute, zerolog.Nop())

	s.sweepArtifacts()
	if sweeper.calls != 1 || sweeper.maxAge != 30*time.Minute {
		t.Fatalf("sweeper = %+v", sweeper)
	}

	sweeper.err = errors.New("disk gone")
	s.sweepArtifacts()
	if sweeper.calls != 2 {
		t.Fatalf("calls = %d", sweeper.calls)
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&fakeSweeper{}, "@every 1h", time.Hour, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-s.Stop().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not complete")
	}
}
