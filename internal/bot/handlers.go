// Package bot renders the order flow over Telegram: commands, inline
// keyboards and the intake text dialogue. All lifecycle decisions live in
// the flow service; this package only decodes updates and sends replies.
package bot

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	tg "shopbot/core/telegram"
	"shopbot/core/telegram/callbacks"
	"shopbot/core/telegram/commands"
	tghelpers "shopbot/core/telegram/helpers"
	"shopbot/internal/flow"
	"shopbot/internal/ledger"
	"shopbot/internal/session"
)

// Handlers wires flow operations to Telegram endpoints.
type Handlers struct {
	svc    *flow.Service
	wallet string
}

// New constructs the handler set. wallet is the USDT (TRC20) address shown
// in payment instructions.
func New(svc *flow.Service, wallet string) *Handlers {
	return &Handlers{svc: svc, wallet: wallet}
}

// Register binds commands, callbacks and the text fallback on the registry.
// A duplicate callback key is a wiring mistake and fails registration.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Начать заказ",
	})
	reg.RegisterCommand("/orders", commands.Command{
		Handler:     h.AdminOrders,
		Description: "Ожидающие заказы",
		AdminOnly:   true,
	})

	callbackRoutes := []struct {
		key     string
		handler tele.HandlerFunc
	}{
		{cbBrand, h.onBrand},
		{cbBack, h.onBack},
		{cbFlavor, h.onFlavor},
		{cbCheck, h.onAdminCheck},
		{cbReject, h.onAdminReject},
		{cbComplete, h.onComplete},
	}
	for _, cb := range callbackRoutes {
		if err := reg.RegisterCallback(cb.key, cb.handler); err != nil {
			return fmt.Errorf("bot: register callback %s: %w", cb.key, err)
		}
	}

	reg.SetTextFallback(h.onText)
	return nil
}

// InProgress satisfies the text router's FSM hook.
func (h *Handlers) InProgress(userID int64) bool {
	return h.svc.InProgress(userID)
}

// ManagerHandler satisfies the text router's FSM hook: mid-flow text goes
// through the intake dialogue.
func (h *Handlers) ManagerHandler(c tele.Context) error {
	return h.onText(c)
}

// Start resets the flow and shows the brand menu.
func (h *Handlers) Start(c tele.Context) error {
	h.svc.StartOver(c.Sender().ID)
	return tghelpers.SendText(c, msgWelcome, &tele.SendOptions{
		ReplyMarkup: brandMenu(h.svc.Menu()),
	})
}

func (h *Handlers) onBrand(c tele.Context) error {
	brandID := callbacks.CallbackPayload(c)
	brand, flavors, ok := h.svc.BrandFlavors(brandID)
	if !ok {
		return tghelpers.SendText(c, noticeActionFailed)
	}
	return c.Edit(chooseFlavorText(brand.Name), flavorMenu(flavors))
}

func (h *Handlers) onBack(c tele.Context) error {
	return c.Edit(msgChooseBrand, brandMenu(h.svc.Menu()))
}

func (h *Handlers) onFlavor(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	flavorID := callbacks.CallbackPayload(c)

	_, flavor, known := h.svc.Flavor(flavorID)
	if _, err := h.svc.SelectFlavor(ctx, c.Sender().ID, flavorID); err != nil || !known {
		// Only catalog tokens are advertised; treat as a stale keyboard.
		return tghelpers.SendText(c, noticeActionFailed)
	}
	return tghelpers.SendText(c, flavorChosenText(flavor.Name, flavor.PriceKZT, flavor.PriceUSDT))
}

// onText handles every free-text message: the intake dialogue when a flow is
// in progress, the menu otherwise.
func (h *Handlers) onText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	res := h.svc.SubmitText(ctx, c.Sender().ID, c.Text())

	switch res.Kind {
	case flow.TextAskPhone:
		return tghelpers.SendText(c, msgAskPhone)
	case flow.TextRetryPhone:
		return tghelpers.SendText(c, msgRetryPhone)
	case flow.TextOrderCreated:
		return h.announceOrder(c, res.Order)
	default:
		return tghelpers.SendText(c, msgWelcome, &tele.SendOptions{
			ReplyMarkup: brandMenu(h.svc.Menu()),
		})
	}
}

// announceOrder sends the payment instructions to the buyer and the review
// notification with check/reject buttons to the admin.
func (h *Handlers) announceOrder(c tele.Context, ord *ledger.Order) error {
	if err := tghelpers.SendText(c, orderSummaryText(ord, h.wallet)); err != nil {
		return err
	}
	admin := &tele.User{ID: h.svc.AdminID()}
	username := ""
	if c.Sender() != nil {
		username = c.Sender().Username
	}
	return tghelpers.SendTo(c, admin, adminNewOrderText(ord, username), adminReviewMenu(ord.ID))
}

func (h *Handlers) onAdminCheck(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orderID := callbacks.CallbackPayload(c)

	ord, err := h.svc.VerifyOrder(ctx, orderID, c.Sender().ID)
	if err != nil {
		return tghelpers.SendText(c, ledgerNotice(err))
	}

	// Re-notify the owner on every verification click; the repeat
	// notification is intended behavior of the manual review flow.
	owner := &tele.User{ID: ord.OwnerID}
	if err := tghelpers.SendTo(c, owner, msgPaymentVerified, completeMenu(ord.ID)); err != nil {
		return err
	}
	return c.Edit(adminOrderCheckedText(ord.ID))
}

func (h *Handlers) onAdminReject(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orderID := callbacks.CallbackPayload(c)

	ord, err := h.svc.RejectOrder(ctx, orderID, c.Sender().ID)
	if err != nil {
		return tghelpers.SendText(c, ledgerNotice(err))
	}

	owner := &tele.User{ID: ord.OwnerID}
	if err := tghelpers.SendTo(c, owner, msgOrderRejected); err != nil {
		return err
	}
	return c.Edit(adminOrderRejectedText(ord.ID))
}

func (h *Handlers) onComplete(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orderID := callbacks.CallbackPayload(c)

	ord, estimate, err := h.svc.CompleteOrder(ctx, orderID, c.Sender().ID)
	if err != nil {
		return tghelpers.SendText(c, ledgerNotice(err))
	}
	return c.Edit(orderAcceptedText(ord, estimate))
}

// AdminOrders lists pending orders. The route is wrapped with the admin-only
// middleware; the flow check backs it up for direct calls.
func (h *Handlers) AdminOrders(c tele.Context) error {
	orders, err := h.svc.PendingOrders(c.Sender().ID)
	if err != nil {
		return tghelpers.SendText(c, ledgerNotice(err))
	}
	return tghelpers.SendMD(c, pendingOrdersText(orders))
}

// ledgerNotice maps ledger errors to the short user-visible notice. Every
// failure path ends in a message, never a crash.
func ledgerNotice(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrNotVerified),
		errors.Is(err, ledger.ErrNotAuthorized):
		return noticeOrderUnavailable
	case errors.Is(err, session.ErrUnknownFlavor):
		return noticeActionFailed
	default:
		return noticeActionFailed
	}
}
