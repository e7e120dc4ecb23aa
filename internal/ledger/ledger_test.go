package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/session"
)

const (
	adminID int64 = 99
	ownerID int64 = 7
)

func testDraft() session.Draft {
	return session.Draft{
		ProductName: "Waka - Mango Ice",
		PriceKZT:    10000,
		PriceUSDT:   19,
		Address:     "Almaty, st. 1",
		Phone:       "+77001234567",
	}
}

func TestSubmitCreatesAwaitingPayment(t *testing.T) {
	l := New(adminID)

	ord := l.Submit(ownerID, testDraft())
	assert.Equal(t, "order_7_0", ord.ID)
	assert.Equal(t, ownerID, ord.OwnerID)
	assert.Equal(t, StatusAwaitingPayment, ord.Status)
	assert.Equal(t, testDraft(), ord.Snapshot)
	assert.Equal(t, 1, l.Len())
}

func TestOrderIDsNeverReused(t *testing.T) {
	l := New(adminID)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		ord := l.Submit(ownerID, testDraft())
		require.False(t, seen[ord.ID], "id %s reused", ord.ID)
		seen[ord.ID] = true
		// Remove and resubmit; the counter must keep climbing.
		_, err := l.Reject(ord.ID, adminID)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, l.Len())
}

func TestSubmitAllowsConcurrentOrdersPerOwner(t *testing.T) {
	l := New(adminID)

	a := l.Submit(ownerID, testDraft())
	b := l.Submit(ownerID, testDraft())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, l.Len())
}

func TestMarkVerifiedAdminOnly(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())

	_, err := l.MarkVerified(ord.ID, ownerID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	got, err := l.Reject(ord.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingPayment, got.Status, "failed verify must not mutate status")
}

func TestMarkVerifiedNotFound(t *testing.T) {
	l := New(adminID)

	_, err := l.MarkVerified("order_7_0", adminID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkVerifiedRepeatable(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())

	first, err := l.MarkVerified(ord.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, first.Status)

	// A repeat verification is a status no-op but still returns the order
	// so the owner gets re-notified.
	second, err := l.MarkVerified(ord.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, second.Status)
}

func TestCompleteRequiresVerified(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())

	_, _, err := l.Complete(ord.ID, ownerID)
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Equal(t, 1, l.Len(), "order stays in the ledger")

	_, err = l.MarkVerified(ord.ID, adminID)
	require.NoError(t, err)

	got, estimate, err := l.Complete(ord.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)
	assert.GreaterOrEqual(t, estimate, 60)
	assert.LessOrEqual(t, estimate, 120)
	assert.Equal(t, 0, l.Len())

	_, _, err = l.Complete(ord.ID, ownerID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteOwnerOnly(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())
	_, err := l.MarkVerified(ord.ID, adminID)
	require.NoError(t, err)

	_, _, err = l.Complete(ord.ID, adminID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 1, l.Len())
}

func TestEstimateBounds(t *testing.T) {
	l := New(adminID)
	for i := 0; i < 200; i++ {
		ord := l.Submit(ownerID, testDraft())
		_, err := l.MarkVerified(ord.ID, adminID)
		require.NoError(t, err)
		_, estimate, err := l.Complete(ord.ID, ownerID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, estimate, 60)
		require.LessOrEqual(t, estimate, 120)
	}
}

func TestRejectRemovesRegardlessOfStatus(t *testing.T) {
	l := New(adminID)

	awaiting := l.Submit(ownerID, testDraft())
	verified := l.Submit(ownerID, testDraft())
	_, err := l.MarkVerified(verified.ID, adminID)
	require.NoError(t, err)

	for _, id := range []string{awaiting.ID, verified.ID} {
		got, err := l.Reject(id, adminID)
		require.NoError(t, err)
		assert.Equal(t, ownerID, got.OwnerID)
	}
	assert.Equal(t, 0, l.Len())
}

func TestRejectAdminOnly(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())

	_, err := l.Reject(ord.ID, ownerID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 1, l.Len())
}

func TestPendingSubmissionOrder(t *testing.T) {
	l := New(adminID)

	var want []string
	for i := 0; i < 4; i++ {
		ord := l.Submit(int64(i+1), testDraft())
		want = append(want, ord.ID)
	}
	var got []string
	for _, ord := range l.Pending() {
		got = append(got, ord.ID)
	}
	assert.Equal(t, want, got)
}

func TestSnapshotsAreCopies(t *testing.T) {
	l := New(adminID)
	ord := l.Submit(ownerID, testDraft())
	ord.Snapshot.Address = "tampered"
	ord.Status = StatusVerified

	got, err := l.MarkVerified(fmt.Sprintf("order_%d_0", ownerID), adminID)
	require.NoError(t, err)
	assert.Equal(t, "Almaty, st. 1", got.Snapshot.Address)
}
