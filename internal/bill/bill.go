package bill

import (
	"io"
	"time"
)

// ExpenseType is the category of an expense
type ExpenseType string

const (
	ExpenseTransports  ExpenseType = "Transports"
	ExpenseRestaurants ExpenseType = "Restaurants et bars"
	ExpenseLodging     ExpenseType = "Hôtel et logement"
	ExpenseOnline      ExpenseType = "Services en ligne"
	ExpenseIT          ExpenseType = "IT et électronique"
	ExpenseEquipment   ExpenseType = "Equipement et matériel"
	ExpenseSupplies    ExpenseType = "Fournitures de bureau"
)

// ExpenseTypes lists every accepted expense category
var ExpenseTypes = []ExpenseType{
	ExpenseTransports,
	ExpenseRestaurants,
	ExpenseLodging,
	ExpenseOnline,
	ExpenseIT,
	ExpenseEquipment,
	ExpenseSupplies,
}

// Status is set by the back office once a bill has been reviewed
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// DefaultPct is used when the form leaves the percentage empty
const DefaultPct = 20

// Bill represents one expense report
type Bill struct {
	ID         string      `json:"id,omitempty"`
	Email      string      `json:"email" validate:"required"`
	Type       ExpenseType `json:"type" validate:"required,expense_type"`
	Name       string      `json:"name" validate:"required"`
	Date       string      `json:"date" validate:"required,datetime=2006-01-02"`
	Amount     *int        `json:"amount" validate:"required,gte=0"`
	VAT        *int        `json:"vat,omitempty" validate:"omitempty,gte=0"`
	Pct        int         `json:"pct" validate:"gte=0,lte=100"`
	Commentary string      `json:"commentary,omitempty"`
	FileURL    string      `json:"file_url,omitempty" validate:"required_with=FileName"`
	FileName   string      `json:"file_name,omitempty" validate:"required_with=FileURL"`
	Status     Status      `json:"status,omitempty" validate:"omitempty,oneof=pending accepted refused"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AttachedFile is a receipt picked on the form, not yet uploaded
type AttachedFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Summary is a display-ready row of the bill list
type Summary struct {
	ID       string      `json:"id"`
	Type     ExpenseType `json:"type"`
	Name     string      `json:"name"`
	Date     string      `json:"date"`
	RawDate  string      `json:"raw_date"`
	Amount   int         `json:"amount"`
	Status   string      `json:"status"`
	FileURL  string      `json:"file_url,omitempty"`
	FileName string      `json:"file_name,omitempty"`
}
