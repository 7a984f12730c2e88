package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlySameBrowser(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("a")
	b := h.Subscribe("b")
	defer a.Close()
	defer b.Close()

	h.Publish("a", Notification{Event: EventSignedOut})

	select {
	case n := <-a.C:
		assert.Equal(t, EventSignedOut, n.Event)
		assert.False(t, n.Authenticated())
	default:
		t.Fatal("subscriber a got nothing")
	}

	select {
	case n := <-b.C:
		t.Fatalf("subscriber b got %v", n)
	default:
	}
}

func TestHub_SlowSubscriberIsClosed(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("a")

	for i := 0; i < h.buffer+1; i++ {
		h.Publish("a", Notification{Event: EventTokenRefreshed})
	}

	assert.Equal(t, 0, h.SubscriberCount("a"))
	n := 0
	for range s.C {
		n++
	}
	assert.Equal(t, h.buffer, n)

	// Closing again is a no-op
	s.Close()
}

func TestHub_CloseRemovesSubscriber(t *testing.T) {
	h := NewHub()
	s1 := h.Subscribe("a")
	s2 := h.Subscribe("a")
	require.Equal(t, 2, h.SubscriberCount("a"))

	s1.Close()
	assert.Equal(t, 1, h.SubscriberCount("a"))

	_, ok := <-s1.C
	assert.False(t, ok)

	s2.Close()
	assert.Equal(t, 0, h.SubscriberCount("a"))
}
