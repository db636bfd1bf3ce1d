package events_test

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/events"
)

func TestNew_SetsCorrelationID(t *testing.T) {
	e := events.New(events.AttackHit, "meadow", "fox", "bear")
	if e.CorrelationID == uuid.Nil {
		t.Error("New left CorrelationID unset")
	}
	if e.At.IsZero() {
		t.Error("New left At unset")
	}
	if e.Kind != events.AttackHit || e.RoomID != "meadow" || e.ActorID != "fox" || e.TargetID != "bear" {
		t.Errorf("unexpected event fields: %+v", e)
	}
}

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	ch := make(chan events.Event, 1)
	bus.Subscribe(ch)

	e := events.New(events.Knockout, "meadow", "bear", "fox")
	bus.Publish(e)

	select {
	case got := <-ch:
		if got.CorrelationID != e.CorrelationID {
			t.Errorf("delivered event %v, want %v", got.CorrelationID, e.CorrelationID)
		}
	default:
		t.Fatal("subscriber received nothing")
	}
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	ch := make(chan events.Event, 1)
	bus.Subscribe(ch)

	// Fill the channel; the second publish must drop, not block.
	bus.Publish(events.New(events.AttackMissed, "meadow", "fox", "bear"))
	done := make(chan struct{})
	go func() {
		bus.Publish(events.New(events.AttackMissed, "meadow", "fox", "bear"))
		close(done)
	}()
	<-done
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	ch := make(chan events.Event, 1)
	bus.Subscribe(ch)
	bus.Unsubscribe(ch)

	bus.Publish(events.New(events.FleeFailed, "meadow", "fox", ""))
	select {
	case <-ch:
		t.Error("unsubscribed channel received an event")
	default:
	}
}
