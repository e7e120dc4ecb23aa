package bot

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"shopbot/core/logger"
	tg "shopbot/core/telegram"
	"shopbot/internal/catalog"
	"shopbot/internal/flow"
	"shopbot/internal/ledger"
	"shopbot/internal/session"
)

const adminID int64 = 42

func TestMain(m *testing.M) {
	// The registry logs wiring diagnostics through the package logger.
	logger.TWire = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	cat, err := catalog.New([]catalog.Brand{
		{ID: "waka", Name: "Waka", Flavors: []catalog.Flavor{
			{ID: "waka_mango", Name: "Mango Ice", PriceKZT: 10000, PriceUSDT: 19},
		}},
	})
	require.NoError(t, err)
	svc := flow.NewService(cat, session.NewStore(cat), ledger.New(adminID))
	return New(svc, "TWalletAddr")
}

func TestRegisterBindsAllEndpoints(t *testing.T) {
	h := newTestHandlers(t)
	reg := tg.NewRegistry()

	require.NoError(t, h.Register(reg))
	assert.Len(t, reg.ListCallbacks(), 6)
	assert.NotNil(t, reg.TextFallback())
}

func TestRegisterPropagatesDuplicateCallback(t *testing.T) {
	h := newTestHandlers(t)
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback(cbBrand, func(tele.Context) error { return nil }))

	err := h.Register(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), cbBrand)
}

func TestPendingOrdersTextEscapesIDs(t *testing.T) {
	l := ledger.New(adminID)
	ord := l.Submit(7, session.Draft{
		ProductName: "Waka - Mango Ice",
		PriceKZT:    10000,
		PriceUSDT:   19,
		Address:     "Almaty, st. 1",
		Phone:       "+77001234567",
	})

	out := pendingOrdersText(l.Pending())
	// Ids carry underscores, which are Markdown italic markers; the raw id
	// must not reach the parse mode.
	assert.NotContains(t, out, "*"+ord.ID+"*")
	assert.Contains(t, out, mdEscape(ord.ID))
	assert.True(t, strings.Contains(out, `\_`), "underscores must be escaped: %q", out)
}

func TestPendingOrdersTextEmpty(t *testing.T) {
	assert.Equal(t, "Нет ожидающих заказов.", pendingOrdersText(nil))
}
