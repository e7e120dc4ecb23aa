package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/catalog"
	"shopbot/internal/ledger"
	"shopbot/internal/session"
)

const (
	adminID int64 = 42
	buyerID int64 = 100500
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat, err := catalog.New([]catalog.Brand{
		{ID: "waka", Name: "Waka", Flavors: []catalog.Flavor{
			{ID: "waka_mango", Name: "Mango Ice", PriceKZT: 10000, PriceUSDT: 19},
			{ID: "waka_blueberry", Name: "Blueberry Ice", PriceKZT: 10000, PriceUSDT: 19},
		}},
		{ID: "elfbar", Name: "Elf Bar", Flavors: []catalog.Flavor{
			{ID: "elfbar_grape", Name: "Grape", PriceKZT: 9000, PriceUSDT: 17},
		}},
	})
	require.NoError(t, err)
	return NewService(cat, session.NewStore(cat), ledger.New(adminID))
}

// submitOrder walks a buyer through the whole intake and returns the order.
func submitOrder(t *testing.T, svc *Service, userID int64) *ledger.Order {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SelectFlavor(ctx, userID, "waka_mango")
	require.NoError(t, err)
	res := svc.SubmitText(ctx, userID, "Almaty, Abay ave 10, apt 5")
	require.Equal(t, TextAskPhone, res.Kind)
	res = svc.SubmitText(ctx, userID, "+77001234567")
	require.Equal(t, TextOrderCreated, res.Kind)
	require.NotNil(t, res.Order)
	return res.Order
}

func TestFullIntakeProducesOrder(t *testing.T) {
	svc := newTestService(t)

	ord := submitOrder(t, svc, buyerID)
	assert.Equal(t, "order_100500_0", ord.ID)
	assert.Equal(t, buyerID, ord.OwnerID)
	assert.Equal(t, ledger.StatusAwaitingPayment, ord.Status)
	assert.Equal(t, session.Draft{
		ProductName: "Waka - Mango Ice",
		PriceKZT:    10000,
		PriceUSDT:   19,
		Address:     "Almaty, Abay ave 10, apt 5",
		Phone:       "+77001234567",
	}, ord.Snapshot)

	// Intake done, the user is back at the menu.
	assert.False(t, svc.InProgress(buyerID))
	res := svc.SubmitText(context.Background(), buyerID, "hello")
	assert.Equal(t, TextShowMenu, res.Kind)
}

func TestRetryPhoneKeepsState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SelectFlavor(ctx, buyerID, "waka_mango")
	require.NoError(t, err)
	res := svc.SubmitText(ctx, buyerID, "some street 1")
	require.Equal(t, TextAskPhone, res.Kind)

	res = svc.SubmitText(ctx, buyerID, "87001234567")
	assert.Equal(t, TextRetryPhone, res.Kind)
	assert.True(t, svc.InProgress(buyerID))

	res = svc.SubmitText(ctx, buyerID, "+77001234567")
	assert.Equal(t, TextOrderCreated, res.Kind)
}

func TestTextOutsideIntakeShowsMenu(t *testing.T) {
	svc := newTestService(t)

	res := svc.SubmitText(context.Background(), buyerID, "anything")
	assert.Equal(t, TextShowMenu, res.Kind)

	orders, err := svc.PendingOrders(adminID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStartOverAbandonsDraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SelectFlavor(ctx, buyerID, "waka_mango")
	require.NoError(t, err)
	svc.StartOver(buyerID)
	assert.False(t, svc.InProgress(buyerID))

	res := svc.SubmitText(ctx, buyerID, "some street 1")
	assert.Equal(t, TextShowMenu, res.Kind)
}

func TestVerifyThenComplete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ord := submitOrder(t, svc, buyerID)

	verified, err := svc.VerifyOrder(ctx, ord.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusVerified, verified.Status)

	done, estimate, err := svc.CompleteOrder(ctx, ord.ID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, done.ID)
	assert.GreaterOrEqual(t, estimate, 60)
	assert.LessOrEqual(t, estimate, 120)

	orders, err := svc.PendingOrders(adminID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCompleteBeforeVerifyFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ord := submitOrder(t, svc, buyerID)

	_, _, err := svc.CompleteOrder(ctx, ord.ID, buyerID)
	assert.ErrorIs(t, err, ledger.ErrNotVerified)

	orders, err := svc.PendingOrders(adminID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestVerifyByNonAdminFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ord := submitOrder(t, svc, buyerID)

	_, err := svc.VerifyOrder(ctx, ord.ID, buyerID)
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)
}

func TestRejectRemovesOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ord := submitOrder(t, svc, buyerID)

	rejected, err := svc.RejectOrder(ctx, ord.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, buyerID, rejected.OwnerID)

	_, err = svc.RejectOrder(ctx, ord.ID, adminID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRepeatedVerifyReturnsOrderAgain(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ord := submitOrder(t, svc, buyerID)

	for i := 0; i < 2; i++ {
		verified, err := svc.VerifyOrder(ctx, ord.ID, adminID)
		require.NoError(t, err)
		require.Equal(t, ledger.StatusVerified, verified.Status)
	}
}

func TestPendingOrdersAdminOnly(t *testing.T) {
	svc := newTestService(t)
	submitOrder(t, svc, buyerID)

	_, err := svc.PendingOrders(buyerID)
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)

	orders, err := svc.PendingOrders(adminID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestBrandFlavors(t *testing.T) {
	svc := newTestService(t)

	brand, flavors, ok := svc.BrandFlavors("waka")
	require.True(t, ok)
	assert.Equal(t, "Waka", brand.Name)
	assert.Len(t, flavors, 2)

	_, _, ok = svc.BrandFlavors("hqd")
	assert.False(t, ok)
}
