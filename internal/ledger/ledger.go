// Package ledger holds orders from submission to resolution and mediates the
// admin/user handshake. Terminal outcomes (completed, rejected) are realized
// as removal; the ledger only ever stores live orders.
package ledger

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"shopbot/internal/session"
)

// Status is the lifecycle stage of a live order.
type Status string

const (
	// StatusAwaitingPayment means the order waits for the admin to verify
	// the manual transfer.
	StatusAwaitingPayment Status = "awaiting_payment"
	// StatusVerified means the admin confirmed payment and the owner may
	// complete the order.
	StatusVerified Status = "verified"
)

var (
	// ErrNotFound is returned when the order id is absent from the ledger.
	ErrNotFound = errors.New("ledger: order not found")
	// ErrNotAuthorized is returned when the requester may not perform the
	// action on this order.
	ErrNotAuthorized = errors.New("ledger: not authorized")
	// ErrNotVerified is returned when completion is attempted before the
	// admin verified payment.
	ErrNotVerified = errors.New("ledger: order not verified")
)

// Delivery estimate bounds in minutes, drawn at completion time.
const (
	estimateMinMinutes = 60
	estimateMaxMinutes = 120
)

// Order is a submitted order. Snapshot is a value copy of the draft at
// submission time and never aliases the session's mutable draft.
type Order struct {
	ID        string
	OwnerID   int64
	Snapshot  session.Draft
	Status    Status
	CreatedAt time.Time

	seq uint64
}

// Ledger is the shared pending-order store. A single mutex guards the map
// and the id counter; every operation is a single atomic mutation, so a
// rejected operation never leaves the ledger inconsistent.
type Ledger struct {
	mu      sync.Mutex
	orders  map[string]*Order
	adminID int64
	seq     uint64
	now     func() time.Time
	randInt func(n int) int
}

// New constructs an empty ledger bound to the administrator identity.
func New(adminID int64) *Ledger {
	return &Ledger{
		orders:  make(map[string]*Order),
		adminID: adminID,
		now:     time.Now,
		randInt: rand.IntN,
	}
}

// AdminID returns the designated administrator identity.
func (l *Ledger) AdminID() int64 {
	return l.adminID
}

// Submit stores a new order in StatusAwaitingPayment and returns it. The id
// is derived from the owner and a monotonically increasing counter over all
// orders ever created, so ids are never reused even after deletion. A user
// with an unresolved order may submit another; the ledger does not prevent
// concurrent live orders per owner.
func (l *Ledger) Submit(ownerID int64, draft session.Draft) *Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	seq := l.seq
	l.seq++
	ord := &Order{
		ID:        fmt.Sprintf("order_%d_%d", ownerID, seq),
		OwnerID:   ownerID,
		Snapshot:  draft,
		Status:    StatusAwaitingPayment,
		CreatedAt: l.now(),
		seq:       seq,
	}
	l.orders[ord.ID] = ord
	return snapshotOf(ord)
}

// MarkVerified sets the order to StatusVerified. Only the admin may verify.
// Verifying an already-verified order is a status no-op but still returns
// the order: the caller re-notifies the owner on every call, preserving the
// repeated-notification behavior of the manual review flow.
func (l *Ledger) MarkVerified(orderID string, requester int64) (*Order, error) {
	if requester != l.adminID {
		return nil, ErrNotAuthorized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ord, ok := l.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	ord.Status = StatusVerified
	return snapshotOf(ord), nil
}

// Complete removes a verified order on behalf of its owner and returns the
// removed order together with a delivery estimate in minutes. The estimate
// is drawn uniformly from [60,120] at completion time and is not stored.
func (l *Ledger) Complete(orderID string, requester int64) (*Order, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ord, ok := l.orders[orderID]
	if !ok {
		return nil, 0, ErrNotFound
	}
	if ord.OwnerID != requester {
		return nil, 0, ErrNotAuthorized
	}
	if ord.Status != StatusVerified {
		return nil, 0, ErrNotVerified
	}
	delete(l.orders, orderID)
	estimate := estimateMinMinutes + l.randInt(estimateMaxMinutes-estimateMinMinutes+1)
	return snapshotOf(ord), estimate, nil
}

// Reject removes the order unconditionally, regardless of its status. Only
// the admin may reject. The removed order is returned so the caller can
// notify the owner.
func (l *Ledger) Reject(orderID string, requester int64) (*Order, error) {
	if requester != l.adminID {
		return nil, ErrNotAuthorized
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ord, ok := l.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(l.orders, orderID)
	return snapshotOf(ord), nil
}

// Pending returns snapshots of all live orders in submission order.
func (l *Ledger) Pending() []*Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Order, 0, len(l.orders))
	for _, ord := range l.orders {
		out = append(out, snapshotOf(ord))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the number of live orders.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

func snapshotOf(ord *Order) *Order {
	cp := *ord
	return &cp
}
