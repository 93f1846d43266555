package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e CaptureStateChangedEvent) {
		received <- e
	})
	defer unsub()

	code := 0
	ev := CaptureStateChangedEvent{
		JobID:     "job-1",
		State:     "completed",
		ExitCode:  &code,
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(ev)

	select {
	case got := <-received:
		if got.JobID != ev.JobID || got.State != ev.State {
			t.Errorf("Expected %+v, got %+v", ev, got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	received1 := make(chan RecordingChangedEvent, 1)
	received2 := make(chan RecordingChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e RecordingChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e RecordingChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(RecordingChangedEvent{Action: "created", Name: "tape.mkv"})

	for i, ch := range []chan RecordingChangedEvent{received1, received2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive event", i+1)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureRejectedEvent, 1)

	unsub := bus.Subscribe(func(e CaptureRejectedEvent) {
		received <- e
	})

	bus.Publish(CaptureRejectedEvent{Code: "ALREADY_RUNNING"})
	<-received

	unsub()

	bus.Publish(CaptureRejectedEvent{Code: "UNKNOWN_PRESET"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(20 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeIsolation(t *testing.T) {
	bus := New()
	lines := make(chan CaptureLineEvent, 1)

	unsub := bus.Subscribe(func(e CaptureLineEvent) {
		lines <- e
	})
	defer unsub()

	bus.Publish(CaptureStateChangedEvent{JobID: "job-1", State: "running"})

	select {
	case e := <-lines:
		t.Fatalf("line subscriber received foreign event %+v", e)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestBus_NilPublishIsSafe(_ *testing.T) {
	var bus *Bus
	bus.Publish(CaptureLineEvent{Line: "ignored"})
}

func TestSubscribeToChannel_DropsWhenFull(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)

	unsub := SubscribeToChannel[CaptureLineEvent](bus, ch)
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(CaptureLineEvent{JobID: "job-1", Line: "frame=1"})
		}()
	}
	wg.Wait()

	select {
	case ev := <-ch:
		if _, ok := ev.(CaptureLineEvent); !ok {
			t.Errorf("unexpected event type %T", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to channel")
	}
}

func TestEventJSONShape(t *testing.T) {
	code := 255
	data, err := json.Marshal(CaptureStateChangedEvent{JobID: "j", State: "completed", ExitCode: &code})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"jobId", "state", "exitCode", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := decoded["error"]; ok {
		t.Errorf("empty error should be omitted: %s", data)
	}
}
