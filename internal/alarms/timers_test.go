package alarms

import (
	"context"
	"testing"
	"time"
)

func TestTimerSink(t *testing.T) {
	t.Parallel()

	t.Run("past first fire dispatches promptly", func(t *testing.T) {
		t.Parallel()

		fired := make(chan string, 1)
		sink := NewTimerSink(func(ctx context.Context, name string) {
			select {
			case fired <- name:
			default:
			}
		})
		defer sink.Close()

		sink.Create("rule-a", time.Now().Add(-time.Minute), time.Hour)

		select {
		case name := <-fired:
			if name != "rule-a" {
				t.Fatalf("fired alarm %q, want rule-a", name)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("alarm with past first fire never dispatched")
		}
	})

	t.Run("pending lists registered alarms sorted", func(t *testing.T) {
		t.Parallel()

		sink := NewTimerSink(nil)
		defer sink.Close()

		future := time.Now().Add(time.Hour)
		sink.Create("rule-b", future, time.Hour)
		sink.Create("rule-a", future, time.Hour)

		got := sink.Pending()
		if len(got) != 2 || got[0] != "rule-a" || got[1] != "rule-b" {
			t.Fatalf("Pending = %v, want [rule-a rule-b]", got)
		}
	})

	t.Run("create replaces an alarm with the same name", func(t *testing.T) {
		t.Parallel()

		sink := NewTimerSink(nil)
		defer sink.Close()

		future := time.Now().Add(time.Hour)
		sink.Create("rule-a", future, time.Hour)
		sink.Create("rule-a", future.Add(time.Hour), time.Hour)

		if got := sink.Pending(); len(got) != 1 {
			t.Fatalf("Pending = %v, want exactly one rule-a", got)
		}
	})

	t.Run("clear all stops future fires", func(t *testing.T) {
		t.Parallel()

		fired := make(chan string, 4)
		sink := NewTimerSink(func(ctx context.Context, name string) {
			fired <- name
		})
		defer sink.Close()

		sink.Create("rule-a", time.Now().Add(time.Hour), time.Hour)
		sink.ClearAll()

		if got := sink.Pending(); len(got) != 0 {
			t.Fatalf("Pending after ClearAll = %v, want none", got)
		}
		select {
		case name := <-fired:
			t.Fatalf("cleared alarm %q still fired", name)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("close rejects further registrations", func(t *testing.T) {
		t.Parallel()

		sink := NewTimerSink(nil)
		sink.Close()

		sink.Create("rule-a", time.Now().Add(time.Hour), time.Hour)
		if got := sink.Pending(); len(got) != 0 {
			t.Fatalf("Create after Close registered %v", got)
		}
	})
}
