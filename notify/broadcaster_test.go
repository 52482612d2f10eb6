package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	n := NewNotifier()

	id1, ch1 := n.Subscribe()
	id2, ch2 := n.Subscribe()
	defer n.Unsubscribe(id1)
	defer n.Unsubscribe(id2)

	n.Success("post created successfully")

	for _, ch := range []<-chan Notification{ch1, ch2} {
		got := <-ch
		assert.Equal(t, LevelSuccess, got.Level)
		assert.Equal(t, "post created successfully", got.Message)
		assert.NotEmpty(t, got.ID)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	n := NewNotifier()
	id, ch := n.Subscribe()
	defer n.Unsubscribe(id)

	// Overfill the buffer; publishing must not block.
	for i := 0; i < subscriberBufferSize+10; i++ {
		n.Info("message")
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBufferSize, received)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := NewNotifier()
	id, ch := n.Subscribe()

	n.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	n.Error("late")
}

func TestSessionExpiredCollapsesRepeats(t *testing.T) {
	n := NewNotifier()
	id, ch := n.SubscribeSessionExpired()
	defer n.UnsubscribeSessionExpired(id)

	// Several rapid 401s collapse into one pending signal.
	n.SessionExpired()
	n.SessionExpired()
	n.SessionExpired()

	<-ch
	select {
	case <-ch:
		require.Fail(t, "expected repeated signals to collapse")
	default:
	}
}
