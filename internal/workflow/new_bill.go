package workflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zombor/billed/internal/bill"
)

// State is the progress of the bill being authored
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateFileAttached
	StateSubmitting
	StateSubmitted
	StateSubmitFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateFileAttached:
		return "file_attached"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}

// draft is the unsaved bill held by the form
type draft struct {
	form     bill.Form
	fileURL  string
	fileName string
}

// NewBill authors a bill: attach a receipt, fill the form, submit.
// A receipt must be attached before the bill can be submitted.
type NewBill struct {
	store   Store
	session Session
	nav     Navigator
	view    FormView

	// calls serializes the operations of this instance, so no two
	// store calls overlap
	calls sync.Mutex

	mu       sync.Mutex
	state    State
	draft    draft
	detached atomic.Bool
}

// NewNewBill creates an empty NewBill form for session
func NewNewBill(store Store, session Session, nav Navigator, view FormView) *NewBill {
	return &NewBill{
		store:   store,
		session: session,
		nav:     nav,
		view:    view,
	}
}

// State returns the current state of the form
func (n *NewBill) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Receipt returns the URL and name of the attached receipt, empty when none is attached
func (n *NewBill) Receipt() (fileURL, fileName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.draft.fileURL, n.draft.fileName
}

// Form returns the values typed so far
func (n *NewBill) Form() bill.Form {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.draft.form
}

// HandleFieldChanged records a value typed on the form
func (n *NewBill) HandleFieldChanged(field bill.Field, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.draft.form.Set(field, value); err != nil {
		return err
	}
	if n.state == StateEmpty {
		n.state = StateEditing
	}
	return nil
}

// HandleFileSelected checks the picked receipt is a picture and uploads it.
// A rejected file is never attached and the form does not advance.
func (n *NewBill) HandleFileSelected(ctx context.Context, file bill.AttachedFile) error {
	n.calls.Lock()
	defer n.calls.Unlock()

	if !bill.IsAcceptable(file.ContentType) {
		n.rejectFile(file)
		return bill.NotPicture()
	}

	fileURL, err := n.store.UploadFile(ctx, n.session.Email, file)
	if n.detached.Load() {
		slog.Debug("Dropping upload response for detached form", "filename", file.Name)
		return err
	}
	if err != nil {
		slog.Error("Failed to upload receipt", "filename", file.Name, "error", err)
		if bill.IsNotPicture(err) {
			n.rejectFile(file)
		} else {
			n.view.RenderError(errorPayload(err))
		}
		return err
	}

	n.mu.Lock()
	n.draft.fileURL = fileURL
	n.draft.fileName = file.Name
	n.state = StateFileAttached
	n.mu.Unlock()
	return nil
}

// rejectFile drops the attachment and clears the file input
func (n *NewBill) rejectFile(file bill.AttachedFile) {
	slog.Info(bill.ErrNotPicture.Error(), "filename", file.Name, "content_type", file.ContentType)

	n.mu.Lock()
	n.draft.fileURL = ""
	n.draft.fileName = ""
	if n.state == StateFileAttached {
		n.state = StateEditing
	}
	n.mu.Unlock()

	n.view.ClearFileInput()
	n.view.ShowDiagnostic(bill.ErrNotPicture.Error())
}

// HandleSubmit assembles the bill from form and sends it to the store.
// On success the draft is discarded and the bill list is shown; on failure
// the draft is kept so the submission can be retried.
func (n *NewBill) HandleSubmit(ctx context.Context, form bill.Form) error {
	n.calls.Lock()
	defer n.calls.Unlock()

	n.mu.Lock()
	n.draft.form = form
	fileURL, fileName := n.draft.fileURL, n.draft.fileName
	n.mu.Unlock()

	if fileURL == "" {
		return n.rejectSubmit(bill.ReceiptRequired())
	}

	b, err := form.Bill(n.session.Email)
	if err == nil {
		b.FileURL = fileURL
		b.FileName = fileName
		err = b.Validate()
	}
	if err != nil {
		return n.rejectSubmit(err)
	}

	n.setState(StateSubmitting)
	created, err := n.store.Create(ctx, b)
	if err != nil {
		n.setState(StateSubmitFailed)
		if n.detached.Load() {
			return err
		}
		slog.Error("Failed to create bill", "email", n.session.Email, "error", err)
		n.view.RenderError(errorPayload(err))
		return err
	}

	slog.Info("Bill created", "id", created.ID, "email", created.Email)
	n.mu.Lock()
	n.state = StateSubmitted
	n.draft = draft{}
	n.mu.Unlock()

	if n.detached.Load() {
		return nil
	}
	n.nav.Navigate(RouteBills)
	return nil
}

// rejectSubmit reports a bill that cannot be sent; the state is left as is
func (n *NewBill) rejectSubmit(err error) error {
	n.view.ShowDiagnostic(err.Error())
	return err
}

func (n *NewBill) setState(state State) {
	n.mu.Lock()
	n.state = state
	n.mu.Unlock()
}

// Detach marks the form as torn down. Responses arriving afterwards are dropped.
func (n *NewBill) Detach() {
	n.detached.Store(true)
}
