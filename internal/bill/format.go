package bill

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// frenchMonths are the abbreviated month names used on the bill list
var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// FormatDate renders an ISO date the way the bill list shows it: "20 Aoû. 22"
func FormatDate(iso string) (string, error) {
	date, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", iso, err)
	}
	month := []rune(cases.Title(language.French).String(frenchMonths[date.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}
	return fmt.Sprintf("%d %s. %02d", date.Day(), string(month), date.Year()%100), nil
}

// FormatStatus returns the label shown for a bill status
func FormatStatus(status Status) string {
	switch status {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refused"
	default:
		return string(status)
	}
}

// Summarize turns bills into display rows, keeping their order.
// A date that cannot be parsed is shown as stored.
func Summarize(bills []Bill) []Summary {
	return lo.Map(bills, func(b Bill, _ int) Summary {
		date, err := FormatDate(b.Date)
		if err != nil {
			slog.Warn("Unformattable bill date", "id", b.ID, "date", b.Date, "error", err)
			date = b.Date
		}
		return Summary{
			ID:       b.ID,
			Type:     b.Type,
			Name:     b.Name,
			Date:     date,
			RawDate:  b.Date,
			Amount:   lo.FromPtr(b.Amount),
			Status:   FormatStatus(b.Status),
			FileURL:  b.FileURL,
			FileName: b.FileName,
		}
	})
}
