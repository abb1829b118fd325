package services

import (
	"testing"

	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testClient(id uint, role models.UserRole) *Client {
	return &Client{
		ID:   id,
		Role: string(role),
		Send: make(chan []byte, 8),
		done: make(chan struct{}),
	}
}

func TestHubDriverPoolMembership(t *testing.T) {
	hub := NewHub()

	d1 := testClient(1, models.RoleDriver)
	d2 := testClient(2, models.RoleDriver)
	hub.add(d1)
	hub.add(d2)

	if got := hub.GetConnectedClients(); got != 2 {
		t.Fatalf("connected clients = %d, want 2", got)
	}

	hub.remove(d1)
	if got := hub.GetConnectedClients(); got != 1 {
		t.Fatalf("connected clients after remove = %d, want 1", got)
	}

	select {
	case <-d1.done:
	default:
		t.Error("removed driver's done channel should be closed")
	}

	// Removing the same client twice must be a no-op, not a double close.
	hub.remove(d1)
	if got := hub.GetConnectedClients(); got != 1 {
		t.Fatalf("connected clients after duplicate remove = %d, want 1", got)
	}
}

func TestHubBroadcastToDrivers(t *testing.T) {
	hub := NewHub()

	d1 := testClient(1, models.RoleDriver)
	d2 := testClient(2, models.RoleDriver)
	c1 := testClient(3, models.RoleCustomer)
	hub.add(d1)
	hub.add(d2)
	hub.add(c1)

	hub.BroadcastToDrivers([]byte(`{"type":"new_ride_request"}`))

	for _, d := range []*Client{d1, d2} {
		select {
		case msg := <-d.Send:
			if string(msg) != `{"type":"new_ride_request"}` {
				t.Errorf("driver %d got %q", d.ID, msg)
			}
		default:
			t.Errorf("driver %d received nothing", d.ID)
		}
	}

	select {
	case <-c1.Send:
		t.Error("customer must not receive driver broadcasts")
	default:
	}
}

func TestHubBroadcastSkipsFullChannel(t *testing.T) {
	hub := NewHub()

	slow := &Client{ID: 1, Role: string(models.RoleDriver), Send: make(chan []byte), done: make(chan struct{})}
	fast := testClient(2, models.RoleDriver)
	hub.add(slow)
	hub.add(fast)

	// slow has an unbuffered channel with no reader; the broadcast must not
	// block on it.
	hub.BroadcastToDrivers([]byte("ping"))

	select {
	case <-fast.Send:
	default:
		t.Error("fast driver should still receive the broadcast")
	}
}

func TestHubSendToCustomer(t *testing.T) {
	hub := NewHub()

	c1 := testClient(10, models.RoleCustomer)
	c2 := testClient(11, models.RoleCustomer)
	hub.add(c1)
	hub.add(c2)

	hub.SendToCustomer(10, []byte("for-10"))

	select {
	case msg := <-c1.Send:
		if string(msg) != "for-10" {
			t.Errorf("customer 10 got %q", msg)
		}
	default:
		t.Error("customer 10 received nothing")
	}

	select {
	case <-c2.Send:
		t.Error("customer 11 must not receive customer 10's message")
	default:
	}

	// Sending to an unknown customer is a silent no-op.
	hub.SendToCustomer(99, []byte("nobody"))
}

func TestHubGaugeMatchesMembershipAcrossReconnect(t *testing.T) {
	// The gauge is process-global, so assert on deltas from this hub only.
	hub := NewHub()
	before := testutil.ToFloat64(observability.ConnectedClients)
	gaugeDelta := func() int {
		return int(testutil.ToFloat64(observability.ConnectedClients) - before)
	}

	old := testClient(10, models.RoleCustomer)
	hub.add(old)
	driver := testClient(1, models.RoleDriver)
	hub.add(driver)

	replacement := testClient(10, models.RoleCustomer)
	hub.add(replacement)
	if gaugeDelta() != hub.GetConnectedClients() {
		t.Fatalf("after reconnect: gauge delta = %d, live connections = %d",
			gaugeDelta(), hub.GetConnectedClients())
	}

	// The replaced connection's unregister arrives late and must not move
	// the gauge again.
	hub.remove(old)
	if gaugeDelta() != hub.GetConnectedClients() {
		t.Fatalf("after stale unregister: gauge delta = %d, live connections = %d",
			gaugeDelta(), hub.GetConnectedClients())
	}

	hub.remove(replacement)
	hub.remove(driver)
	if gaugeDelta() != 0 || hub.GetConnectedClients() != 0 {
		t.Fatalf("after teardown: gauge delta = %d, live connections = %d, want 0 and 0",
			gaugeDelta(), hub.GetConnectedClients())
	}
}

func TestHubCustomerReconnectReplacesChannel(t *testing.T) {
	hub := NewHub()

	old := testClient(10, models.RoleCustomer)
	hub.add(old)

	replacement := testClient(10, models.RoleCustomer)
	hub.add(replacement)

	select {
	case <-old.done:
	default:
		t.Error("replaced connection's done channel should be closed")
	}

	hub.SendToCustomer(10, []byte("hello"))
	select {
	case <-replacement.Send:
	default:
		t.Error("replacement connection should receive messages")
	}
	select {
	case <-old.Send:
		t.Error("stale connection must not receive messages")
	default:
	}

	// The old connection's deferred unregister arrives after the replacement;
	// it must not tear down the live channel.
	hub.remove(old)
	hub.SendToCustomer(10, []byte("still here"))
	select {
	case <-replacement.Send:
	default:
		t.Error("replacement should survive the stale unregister")
	}
}
