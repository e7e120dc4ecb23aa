// Package flow binds the catalog, session store and order ledger into the
// order lifecycle use cases. It is transport-free: inbound events arrive
// already decoded into typed operations, and results are rendered elsewhere.
package flow

import (
	"context"
	"errors"

	"shopbot/core/logger"
	"shopbot/internal/catalog"
	"shopbot/internal/ledger"
	"shopbot/internal/session"

	"log/slog"
)

// TextKind tags the outcome of a free-text message routed through the flow.
type TextKind int

const (
	// TextShowMenu means the text did not belong to an intake step; the
	// caller re-shows the top-level menu. This is the documented fallback,
	// not an error.
	TextShowMenu TextKind = iota
	// TextAskPhone means the address was recorded; prompt for the phone.
	TextAskPhone
	// TextRetryPhone means the phone failed validation; re-prompt without
	// changing state.
	TextRetryPhone
	// TextOrderCreated means the draft completed and an order was
	// submitted to the ledger.
	TextOrderCreated
)

// TextResult carries what the transport layer needs to answer a text message.
type TextResult struct {
	Kind  TextKind
	Order *ledger.Order // set when Kind == TextOrderCreated
}

// Service implements the order lifecycle on top of the two stores. A handler
// only ever touches the session store before the ledger, never the reverse,
// and no store lock is held across the other store's operations.
type Service struct {
	catalog  *catalog.Catalog
	sessions *session.Store
	orders   *ledger.Ledger
}

// NewService wires the flow over its collaborators.
func NewService(cat *catalog.Catalog, sessions *session.Store, orders *ledger.Ledger) *Service {
	return &Service{catalog: cat, sessions: sessions, orders: orders}
}

// AdminID exposes the administrator identity for transport-side gating.
func (s *Service) AdminID() int64 {
	return s.orders.AdminID()
}

// Menu returns the brands for the top-level keyboard.
func (s *Service) Menu() []catalog.Brand {
	return s.catalog.ListBrands()
}

// BrandFlavors returns a brand with its flavors for the flavor keyboard.
func (s *Service) BrandFlavors(brandID string) (catalog.Brand, []catalog.Flavor, bool) {
	brands := s.catalog.ListBrands()
	flavors, ok := s.catalog.ListFlavors(brandID)
	if !ok {
		return catalog.Brand{}, nil, false
	}
	for _, b := range brands {
		if b.ID == brandID {
			return b, flavors, true
		}
	}
	return catalog.Brand{}, nil, false
}

// Flavor resolves a flavor id for rendering prompts.
func (s *Service) Flavor(flavorID string) (catalog.Brand, catalog.Flavor, bool) {
	return s.catalog.LookupFlavor(flavorID)
}

// StartOver resets the user to the beginning of the flow.
func (s *Service) StartOver(userID int64) {
	s.sessions.Reset(userID)
}

// InProgress reports whether the user's next text message belongs to the
// intake flow.
func (s *Service) InProgress(userID int64) bool {
	return s.sessions.InProgress(userID)
}

// SelectFlavor records a flavor pick and returns the session snapshot with
// the populated draft so the caller can prompt for the address.
func (s *Service) SelectFlavor(ctx context.Context, userID int64, flavorID string) (session.Session, error) {
	sess, err := s.sessions.RecordFlavorSelection(userID, flavorID)
	if err != nil {
		return session.Session{}, err
	}
	logger.Debug(ctx, "flow", "flavor.selected",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flavor_id", flavorID),
		slog.String("state", string(sess.State)),
	)
	return sess, nil
}

// SubmitText dispatches a free-text message on the user's current state:
// address intake, phone intake, or the menu fallback. A completed phone
// submission promotes the draft into the ledger.
func (s *Service) SubmitText(ctx context.Context, userID int64, text string) TextResult {
	switch s.sessions.StateOf(userID) {
	case session.StateAwaitingAddress:
		if _, err := s.sessions.RecordAddress(userID, text); err != nil {
			// Lost the state race with another update from the same
			// user; recover at the menu.
			return TextResult{Kind: TextShowMenu}
		}
		return TextResult{Kind: TextAskPhone}

	case session.StateAwaitingPhone:
		draft, err := s.sessions.RecordPhone(userID, text)
		if errors.Is(err, session.ErrInvalidPhone) {
			return TextResult{Kind: TextRetryPhone}
		}
		if err != nil {
			return TextResult{Kind: TextShowMenu}
		}
		ord := s.orders.Submit(userID, draft)
		logger.Info(ctx, "flow", "order.submitted",
			slog.String("status", "ok"),
			slog.String("order_id", ord.ID),
			slog.Int64("owner_id", ord.OwnerID),
			slog.String("order_status", string(ord.Status)),
			slog.Int("orders_pending", s.orders.Len()),
		)
		return TextResult{Kind: TextOrderCreated, Order: ord}

	default:
		return TextResult{Kind: TextShowMenu}
	}
}

// VerifyOrder marks the order verified on behalf of the admin and returns it
// so the owner can be notified. Repeated verification returns the order
// again; the owner is re-notified every time.
func (s *Service) VerifyOrder(ctx context.Context, orderID string, requester int64) (*ledger.Order, error) {
	ord, err := s.orders.MarkVerified(orderID, requester)
	if err != nil {
		logger.Warn(ctx, "flow", "order.verify",
			slog.String("status", "fail"),
			slog.String("order_id", orderID),
			slog.Int64("user_id", requester),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	logger.Info(ctx, "flow", "order.verified",
		slog.String("status", "ok"),
		slog.String("order_id", ord.ID),
		slog.Int64("owner_id", ord.OwnerID),
	)
	return ord, nil
}

// RejectOrder removes the order on behalf of the admin regardless of status.
func (s *Service) RejectOrder(ctx context.Context, orderID string, requester int64) (*ledger.Order, error) {
	ord, err := s.orders.Reject(orderID, requester)
	if err != nil {
		logger.Warn(ctx, "flow", "order.reject",
			slog.String("status", "fail"),
			slog.String("order_id", orderID),
			slog.Int64("user_id", requester),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	logger.Info(ctx, "flow", "order.rejected",
		slog.String("status", "ok"),
		slog.String("order_id", ord.ID),
		slog.Int64("owner_id", ord.OwnerID),
	)
	return ord, nil
}

// CompleteOrder removes a verified order on behalf of its owner and returns
// the snapshot with a fresh delivery estimate in minutes.
func (s *Service) CompleteOrder(ctx context.Context, orderID string, requester int64) (*ledger.Order, int, error) {
	ord, estimate, err := s.orders.Complete(orderID, requester)
	if err != nil {
		logger.Warn(ctx, "flow", "order.complete",
			slog.String("status", "fail"),
			slog.String("order_id", orderID),
			slog.Int64("user_id", requester),
			slog.String("err", err.Error()),
		)
		return nil, 0, err
	}
	logger.Info(ctx, "flow", "order.completed",
		slog.String("status", "ok"),
		slog.String("order_id", ord.ID),
		slog.Int64("owner_id", ord.OwnerID),
		slog.Int("estimate_min", estimate),
	)
	return ord, estimate, nil
}

// PendingOrders lists live orders for the admin review surface.
func (s *Service) PendingOrders(requester int64) ([]*ledger.Order, error) {
	if requester != s.orders.AdminID() {
		return nil, ledger.ErrNotAuthorized
	}
	return s.orders.Pending(), nil
}
