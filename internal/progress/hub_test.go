package progress

import "testing"

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(Event{Name: EventJobStarted, Payload: "j1"})

	for _, ch := range []chan Event{a, b} {
		select {
		case e := <-ch:
			if e.Name != EventJobStarted {
				t.Errorf("Expected %s, got %s", EventJobStarted, e.Name)
			}
		default:
			t.Error("Expected buffered event for subscriber")
		}
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(Event{Name: EventDownloadProgress})
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("Expected buffer capped at %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("Expected closed channel after unsubscribe")
	}

	// double unsubscribe must not panic
	h.Unsubscribe(ch)
	h.Publish(Event{Name: EventJobCompleted})
}

func TestMultiFansOut(t *testing.T) {
	var got []string
	fn := publisherFunc(func(e Event) { got = append(got, e.Name) })

	Multi{fn, fn}.Publish(Event{Name: EventJobCancelled})
	if len(got) != 2 {
		t.Errorf("Expected 2 deliveries, got %d", len(got))
	}
}

type publisherFunc func(Event)

func (f publisherFunc) Publish(e Event) { f(e) }
