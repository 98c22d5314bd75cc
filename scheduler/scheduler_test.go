package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"listing_studio/config"
)

type counter struct {
	n atomic.Int32
}

func (c *counter) Trigger() {
	c.n.Add(1)
}

func TestIntervalTriggersSweep(t *testing.T) {
	c := &counter{}
	s := New(config.SchedulerConfig{Interval: 10 * time.Millisecond}, c)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for c.n.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 triggers, got %d", c.n.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidCron(t *testing.T) {
	s := New(config.SchedulerConfig{Cron: "every tuesday"}, &counter{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestValidCronAndTriggerNow(t *testing.T) {
	c := &counter{}
	s := New(config.SchedulerConfig{Cron: "*/5 * * * *", Interval: time.Millisecond}, c)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	s.TriggerNow()
	s.Stop()

	if got := c.n.Load(); got != 1 {
		t.Fatalf("expected only the manual trigger, got %d", got)
	}
}

func TestNoSchedule(t *testing.T) {
	c := &counter{}
	s := New(config.SchedulerConfig{}, c)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	s.Stop()
	if c.n.Load() != 0 {
		t.Fatalf("expected no triggers, got %d", c.n.Load())
	}
}
