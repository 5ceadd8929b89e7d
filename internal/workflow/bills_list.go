package workflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zombor/billed/internal/bill"
)

// BillsList shows the bills of the connected employee, most recent first
type BillsList struct {
	store    Store
	session  Session
	nav      Navigator
	renderer Renderer
	viewer   ReceiptViewer

	// mu serializes store calls made by this instance
	mu       sync.Mutex
	detached atomic.Bool
}

// NewBillsList creates a BillsList for session
func NewBillsList(store Store, session Session, nav Navigator, renderer Renderer, viewer ReceiptViewer) *BillsList {
	return &BillsList{
		store:    store,
		session:  session,
		nav:      nav,
		renderer: renderer,
		viewer:   viewer,
	}
}

// Activate fetches the employee's bills and renders them, or renders the
// failure instead. The returned error has already been rendered.
func (l *BillsList) Activate(ctx context.Context) error {
	l.mu.Lock()
	bills, err := l.store.List(ctx, l.session.Email)
	l.mu.Unlock()

	if l.detached.Load() {
		slog.Debug("Dropping bill list response for detached view", "email", l.session.Email)
		return err
	}

	if err != nil {
		slog.Error("Failed to list bills", "email", l.session.Email, "error", err)
		l.renderer.RenderError(errorPayload(err))
		return err
	}

	l.renderer.RenderBills(bill.Summarize(bill.SortByDateDesc(bills)))
	return nil
}

// HandleNavigateToCreate opens the new bill form
func (l *BillsList) HandleNavigateToCreate() {
	l.nav.Navigate(RouteNewBill)
}

// HandleInspectReceipt shows the receipt of a listed bill.
// Bills without a receipt are ignored.
func (l *BillsList) HandleInspectReceipt(summary bill.Summary) {
	if summary.FileURL == "" {
		return
	}
	l.viewer.ShowReceipt(Receipt{URL: summary.FileURL, FileName: summary.FileName})
}

// Detach marks the view as torn down. Responses arriving afterwards are dropped.
func (l *BillsList) Detach() {
	l.detached.Store(true)
}
