package workflow

import (
	"github.com/zombor/billed/internal/bill"
)

// Error kinds carried by an ErrorPayload
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindServer     = "server"
	KindNetwork    = "network"
)

// ErrorPayload is what the front end shows when an operation fails
type ErrorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// errorPayload maps a failure onto its user visible payload.
// The message keeps the store's own text.
func errorPayload(err error) ErrorPayload {
	kind := KindServer
	switch bill.Kind(err) {
	case bill.ErrValidation:
		kind = KindValidation
	case bill.ErrNotFound:
		kind = KindNotFound
	case bill.ErrNetwork:
		kind = KindNetwork
	}
	return ErrorPayload{Message: err.Error(), Kind: kind}
}
