package bill

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("expense_type", func(fl validator.FieldLevel) bool {
		return lo.Contains(ExpenseTypes, ExpenseType(fl.Field().String()))
	})
	return v
}

// validationError turns validator output into a single readable validation error
func validationError(subject string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) {
		return NewValidationError(fmt.Sprintf("invalid %s: %v", subject, err))
	}
	fields := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag())
	})
	return NewValidationError(fmt.Sprintf("invalid %s: %s", subject, strings.Join(fields, ", ")))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}

// Validate checks the fields a bill must carry before it is persisted
func (b Bill) Validate() error {
	if err := validate.Struct(b); err != nil {
		return validationError("bill", err)
	}
	return nil
}

// Field names a form input
type Field string

const (
	FieldType       Field = "type"
	FieldName       Field = "name"
	FieldDate       Field = "date"
	FieldAmount     Field = "amount"
	FieldVAT        Field = "vat"
	FieldPct        Field = "pct"
	FieldCommentary Field = "commentary"
)

// Form holds the raw values typed on the new bill form
type Form struct {
	Type       string `validate:"required"`
	Name       string `validate:"required"`
	Date       string `validate:"required"`
	Amount     string `validate:"required,number"`
	VAT        string `validate:"omitempty,number"`
	Pct        string `validate:"omitempty,number"`
	Commentary string
}

// Set stores value in the given field
func (f *Form) Set(field Field, value string) error {
	switch field {
	case FieldType:
		f.Type = value
	case FieldName:
		f.Name = value
	case FieldDate:
		f.Date = value
	case FieldAmount:
		f.Amount = value
	case FieldVAT:
		f.VAT = value
	case FieldPct:
		f.Pct = value
	case FieldCommentary:
		f.Commentary = value
	default:
		return NewValidationError(fmt.Sprintf("unknown field: %s", field))
	}
	return nil
}

// Bill assembles a bill owned by email from the form values.
// The returned bill has no ID, receipt or status yet.
func (f Form) Bill(email string) (Bill, error) {
	if err := validate.Struct(f); err != nil {
		return Bill{}, validationError("form", err)
	}

	amount, err := strconv.Atoi(strings.TrimSpace(f.Amount))
	if err != nil {
		return Bill{}, NewValidationError(fmt.Sprintf("invalid form: amount %q", f.Amount))
	}

	b := Bill{
		Email:      email,
		Type:       ExpenseType(f.Type),
		Name:       f.Name,
		Date:       f.Date,
		Amount:     &amount,
		Pct:        DefaultPct,
		Commentary: f.Commentary,
	}

	if f.VAT != "" {
		vat, err := strconv.Atoi(f.VAT)
		if err != nil {
			return Bill{}, NewValidationError(fmt.Sprintf("invalid form: vat %q", f.VAT))
		}
		b.VAT = &vat
	}

	if f.Pct != "" {
		pct, err := strconv.Atoi(f.Pct)
		if err != nil {
			return Bill{}, NewValidationError(fmt.Sprintf("invalid form: pct %q", f.Pct))
		}
		b.Pct = pct
	}

	return b, nil
}
