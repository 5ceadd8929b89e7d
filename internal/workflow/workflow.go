// Package workflow drives the employee's bill list and new bill form.
//
// Workflows never touch presentation: they call a Store, then hand plain
// payloads to the Renderer, FormView, ReceiptViewer and Navigator supplied
// by the front end. Store failures are converted into ErrorPayloads at the
// workflow boundary and are never fatal.
package workflow

import (
	"context"

	"github.com/zombor/billed/internal/bill"
)

// Store is the remote bill store the workflows read from and write to
type Store interface {
	List(ctx context.Context, email string) ([]bill.Bill, error)
	UploadFile(ctx context.Context, email string, file bill.AttachedFile) (string, error)
	Create(ctx context.Context, b bill.Bill) (bill.Bill, error)
}

// Session identifies the connected employee
type Session struct {
	Email string
	Type  string
}

// Route is a navigation intent consumed by the front end router
type Route string

const (
	RouteBills   Route = "#employee/bills"
	RouteNewBill Route = "#employee/bill/new"
)

// Navigator receives navigation intents
type Navigator interface {
	Navigate(route Route)
}

// Renderer paints the bill list or the error shown in its place
type Renderer interface {
	RenderBills(bills []bill.Summary)
	RenderError(payload ErrorPayload)
}

// Receipt is a receipt picture to show in a modal
type Receipt struct {
	URL      string
	FileName string
}

// ReceiptViewer shows receipt pictures
type ReceiptViewer interface {
	ShowReceipt(receipt Receipt)
}

// FormView is the new bill form as seen by its workflow
type FormView interface {
	// ClearFileInput removes the file currently selected on the form
	ClearFileInput()
	// ShowDiagnostic reports a local problem with what was typed or picked
	ShowDiagnostic(message string)
	// RenderError shows a failure next to the form
	RenderError(payload ErrorPayload)
}
