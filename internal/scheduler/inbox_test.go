package scheduler

import (
	"testing"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/testutil"
)

// TestInbox_SendReceive verifies the basic send/receive path.
func TestInbox_SendReceive(t *testing.T) {
	logger := testutil.NewTestLogger()
	inbox := NewInbox(10, time.Second, logger.Logger())

	sent := inbox.Send(InboxMessage{
		Type: MsgTickDelivered,
		Data: TickDeliveredMsg{Pipeline: "events", Records: 5},
	})
	if !sent {
		t.Fatal("expected send to succeed")
	}

	msg, ok := inbox.TryReceive()
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Type != MsgTickDelivered {
		t.Errorf("expected tick_delivered, got %s", msg.Type)
	}

	data := msg.Data.(TickDeliveredMsg)
	if data.Pipeline != "events" || data.Records != 5 {
		t.Errorf("unexpected payload: %+v", data)
	}
}

// TestInbox_TryReceiveEmpty verifies that TryReceive never blocks.
func TestInbox_TryReceiveEmpty(t *testing.T) {
	logger := testutil.NewTestLogger()
	inbox := NewInbox(10, time.Second, logger.Logger())

	if _, ok := inbox.TryReceive(); ok {
		t.Error("expected no message from an empty inbox")
	}
}

// TestInbox_SendTimeout verifies that a full inbox times out the sender
// instead of blocking it forever.
func TestInbox_SendTimeout(t *testing.T) {
	logger := testutil.NewTestLogger()
	inbox := NewInbox(1, 50*time.Millisecond, logger.Logger())

	if !inbox.Send(InboxMessage{Type: MsgGetStats}) {
		t.Fatal("expected first send to succeed")
	}

	start := time.Now()
	if inbox.Send(InboxMessage{Type: MsgGetStats}) {
		t.Fatal("expected second send to time out")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected send to wait for the timeout, returned after %v", elapsed)
	}

	if !logger.HasWarning() {
		t.Error("expected a warning log for the timeout")
	}

	stats := inbox.Stats()
	if stats.TimeoutCount != 1 {
		t.Errorf("expected 1 timeout, got %d", stats.TimeoutCount)
	}
}

// TestInbox_Stats verifies the sent/received counters and depth tracking.
func TestInbox_Stats(t *testing.T) {
	logger := testutil.NewTestLogger()
	inbox := NewInbox(10, time.Second, logger.Logger())

	for i := 0; i < 3; i++ {
		inbox.Send(InboxMessage{Type: MsgGetStats})
	}
	inbox.UpdateDepthStats()

	stats := inbox.Stats()
	if stats.TotalSent != 3 {
		t.Errorf("expected 3 sent, got %d", stats.TotalSent)
	}
	if stats.MaxDepthSeen != 3 {
		t.Errorf("expected max depth 3, got %d", stats.MaxDepthSeen)
	}

	inbox.TryReceive()
	stats = inbox.Stats()
	if stats.TotalReceived != 1 {
		t.Errorf("expected 1 received, got %d", stats.TotalReceived)
	}
}
