package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/eventloom/eventloom/internal/plan"
)

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func expectQuiet(t *testing.T, ch <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(d):
	}
}

func TestDispatcherEmitsInFireOrder(t *testing.T) {
	d := NewDispatcher(8)
	d.Start()
	defer d.Stop()

	now := time.Now()
	err := d.Apply([]plan.Request{
		{TaskID: "task-1", Kind: plan.KindDue, FireAt: now.Add(80 * time.Millisecond)},
		{TaskID: "task-1", Kind: plan.KindWarning, FireAt: now.Add(20 * time.Millisecond)},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	first := waitEvent(t, d.C(), time.Second)
	second := waitEvent(t, d.C(), time.Second)
	if first.Kind != plan.KindWarning || second.Kind != plan.KindDue {
		t.Fatalf("unexpected order: first=%s second=%s", first.Kind, second.Kind)
	}
}

func TestDispatcherApplySupersedesByKey(t *testing.T) {
	d := NewDispatcher(8)
	d.Start()
	defer d.Stop()

	now := time.Now()
	if err := d.Apply([]plan.Request{
		{TaskID: "task-1", Kind: plan.KindDue, FireAt: now.Add(30 * time.Millisecond), Content: "stale"},
	}); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := d.Apply([]plan.Request{
		{TaskID: "task-1", Kind: plan.KindDue, FireAt: now.Add(60 * time.Millisecond), Content: "fresh"},
	}); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	ev := waitEvent(t, d.C(), time.Second)
	if ev.Content != "fresh" {
		t.Fatalf("superseded request fired: %+v", ev)
	}
	expectQuiet(t, d.C(), 100*time.Millisecond)
}

func TestDispatcherCancelAll(t *testing.T) {
	d := NewDispatcher(8)
	d.Start()
	defer d.Stop()

	now := time.Now()
	if err := d.Apply([]plan.Request{
		{TaskID: "task-1", Kind: plan.KindDue, FireAt: now.Add(40 * time.Millisecond)},
		{TaskID: "task-1", Kind: plan.KindWarning, FireAt: now.Add(40 * time.Millisecond)},
		{TaskID: "task-2", Kind: plan.KindDue, FireAt: now.Add(40 * time.Millisecond)},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	d.CancelAll("task-1")

	ev := waitEvent(t, d.C(), time.Second)
	if ev.TaskID != "task-2" {
		t.Fatalf("cancelled task fired: %+v", ev)
	}
	expectQuiet(t, d.C(), 100*time.Millisecond)
}

func TestDispatcherValidatesFireTime(t *testing.T) {
	d := NewDispatcher(1)
	err := d.Apply([]plan.Request{{TaskID: "task-1", Kind: plan.KindDue}})
	if !errors.Is(err, ErrInvalidFireTime) {
		t.Fatalf("expected ErrInvalidFireTime, got %v", err)
	}
}

func TestDispatcherDropsWhenConsumerIsSlow(t *testing.T) {
	d := NewDispatcher(1)
	d.Start()
	defer d.Stop()

	fireAt := time.Now().Add(20 * time.Millisecond)
	reqs := make([]plan.Request, 0, 25)
	for i := 0; i < 25; i++ {
		reqs = append(reqs, plan.Request{
			TaskID: "task-" + string(rune('a'+i)),
			Kind:   plan.KindDue,
			FireAt: fireAt,
		})
	}
	if err := d.Apply(reqs); err != nil {
		t.Fatalf("apply: %v", err)
	}

	time.Sleep(120 * time.Millisecond)
	if d.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", d.Dropped())
	}
}

func TestDispatcherRejectsApplyAfterStop(t *testing.T) {
	d := NewDispatcher(1)
	d.Start()
	d.Stop()
	err := d.Apply([]plan.Request{{TaskID: "task-1", Kind: plan.KindDue, FireAt: time.Now()}})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
