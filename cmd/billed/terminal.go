package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/workflow"
)

// terminal is the text front end of both workflows
type terminal struct {
	ctx          context.Context
	out          io.Writer
	activateList func(ctx context.Context) error
	// locate turns a receipt URL into something the user can open
	locate func(fileURL string) string
	bills  []bill.Summary
}

func newTerminal(ctx context.Context, out io.Writer) *terminal {
	return &terminal{ctx: ctx, out: out, locate: func(fileURL string) string { return fileURL }}
}

// storedReceiptLocation maps the store relative receipt URLs of a local
// store onto where the receipt actually lives. Other URLs are kept.
func storedReceiptLocation(backend, storagePath, bucket string) func(string) string {
	return func(fileURL string) string {
		key, ok := strings.CutPrefix(fileURL, bill.FileURLPrefix)
		if !ok {
			return fileURL
		}
		if backend == "s3" {
			return fmt.Sprintf("s3://%s/%s", bucket, key)
		}
		return filepath.Join(storagePath, key)
	}
}

// Navigate follows a route. The bill list is rendered in place.
func (t *terminal) Navigate(route workflow.Route) {
	switch route {
	case workflow.RouteBills:
		if t.activateList == nil {
			return
		}
		// failures are already rendered
		_ = t.activateList(t.ctx)
	case workflow.RouteNewBill:
		fmt.Fprintln(t.out, "Run 'billed new' to submit a bill.")
	default:
		slog.Warn("Unknown route", "route", route)
	}
}

func (t *terminal) RenderBills(bills []bill.Summary) {
	t.bills = bills
	if len(bills) == 0 {
		fmt.Fprintln(t.out, "No bills.")
		return
	}

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tDATE\tAMOUNT\tSTATUS\tRECEIPT")
	for _, b := range bills {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d €\t%s\t%s\n",
			b.ID, b.Type, b.Name, b.Date, b.Amount, b.Status, lo.Ternary(b.FileURL != "", "yes", "no"))
	}
	w.Flush()
}

func (t *terminal) RenderError(payload workflow.ErrorPayload) {
	fmt.Fprintf(t.out, "%s\n", payload.Message)
}

func (t *terminal) ShowReceipt(receipt workflow.Receipt) {
	fmt.Fprintf(t.out, "Justificatif: %s\n%s\n", receipt.FileName, t.locate(receipt.URL))
}

func (t *terminal) ClearFileInput() {
	slog.Debug("Receipt selection cleared")
}

func (t *terminal) ShowDiagnostic(message string) {
	fmt.Fprintf(t.out, "! %s\n", message)
}

func (t *terminal) summary(id string) (bill.Summary, bool) {
	return lo.Find(t.bills, func(s bill.Summary) bool {
		return s.ID == id
	})
}
