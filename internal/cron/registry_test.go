package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	expiry := &stubJob{name: "order-expiry"}
	cleanup := &stubJob{name: "notification-cleanup"}
	reg := NewRegistry(expiry, nil)
	reg.Register(cleanup)

	got := reg.Jobs()
	if len(got) != 2 || got[0] != expiry || got[1] != cleanup {
		t.Fatalf("unexpected jobs %v", got)
	}

	got[0] = nil
	if reg.Jobs()[0] != expiry {
		t.Fatalf("Jobs must return a copy")
	}
}

func TestRegistryFirstNameWins(t *testing.T) {
	first := &stubJob{name: "order-expiry"}
	var zero Registry
	zero.Register(first)
	zero.Register(&stubJob{name: "order-expiry"})

	if jobs := zero.Jobs(); len(jobs) != 1 || jobs[0] != first {
		t.Fatalf("expected only the first registration, got %v", jobs)
	}
}
