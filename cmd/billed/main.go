package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/workflow"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// storeFlags are shared by every subcommand
type storeFlags struct {
	email          *string
	storeURL       *string
	dbPath         *string
	storagePath    *string
	storageBackend *string
	s3Endpoint     *string
	s3Region       *string
	s3Bucket       *string
	s3AccessKey    *string
	s3SecretKey    *string
	authUser       *string
	authPass       *string
	retries        *int
	timeout        *time.Duration
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	rootFlags := ff.NewFlagSet("billed")
	sf := storeFlags{
		email:          rootFlags.StringLong("email", "", "Email of the connected employee"),
		storeURL:       rootFlags.StringLong("store", "", "URL of a remote bill store (empty uses the local database)"),
		dbPath:         rootFlags.StringLong("db", "billed.db", "Database file path"),
		storagePath:    rootFlags.StringLong("storage", "./receipts", "Storage directory path"),
		storageBackend: rootFlags.StringLong("storage-backend", "local", "Receipt storage: 'local' or 's3'"),
		s3Endpoint:     rootFlags.StringLong("s3-endpoint", "", "S3 compatible endpoint URL (empty uses AWS)"),
		s3Region:       rootFlags.StringLong("s3-region", "us-east-1", "S3 region"),
		s3Bucket:       rootFlags.StringLong("s3-bucket", "receipts", "S3 bucket name"),
		s3AccessKey:    rootFlags.StringLong("s3-access-key", "", "S3 access key"),
		s3SecretKey:    rootFlags.StringLong("s3-secret-key", "", "S3 secret key"),
		authUser:       rootFlags.StringLong("auth-user", "", "Basic auth username (optional)"),
		authPass:       rootFlags.StringLong("auth-pass", "", "Basic auth password (optional)"),
		retries:        rootFlags.IntLong("retries", 2, "Retries on a failed call to a remote store"),
		timeout:        rootFlags.DurationLong("timeout", 30*time.Second, "Timeout of a call to a remote store"),
	}
	_ = rootFlags.BoolLong("version", "Show version information")

	rootCmd := &ff.Command{
		Name:  "billed",
		Usage: "billed <SUBCOMMAND> [FLAGS]",
		Flags: rootFlags,
		Subcommands: []*ff.Command{
			newServeCommand(rootFlags, sf),
			newListCommand(rootFlags, sf),
			newBillCommand(rootFlags, sf),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("BILLED"))
	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp), errors.Is(err, ff.ErrNoExec):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(selected(rootCmd)))
	case isRunError(err):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(selected(rootCmd)))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func selected(root *ff.Command) *ff.Command {
	if cmd := root.GetSelected(); cmd != nil {
		return cmd
	}
	return root
}

// runError marks failures raised while a subcommand runs, as opposed to flag parsing
type runError struct{ err error }

func (e runError) Error() string { return e.err.Error() }
func (e runError) Unwrap() error { return e.err }

func isRunError(err error) bool {
	var re runError
	return errors.As(err, &re)
}

func newServeCommand(parent *ff.FlagSet, sf storeFlags) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	port := fs.IntLong("port", 8080, "HTTP server port")

	return &ff.Command{
		Name:      "serve",
		Usage:     "billed serve [FLAGS]",
		ShortHelp: "run the bill store server",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if err := serve(ctx, sf, *port); err != nil {
				return runError{err}
			}
			return nil
		},
	}
}

func newListCommand(parent *ff.FlagSet, sf storeFlags) *ff.Command {
	fs := ff.NewFlagSet("list").SetParent(parent)
	receiptID := fs.StringLong("receipt", "", "Show the receipt of the bill with this ID")

	return &ff.Command{
		Name:      "list",
		Usage:     "billed list --email EMAIL [FLAGS]",
		ShortHelp: "show the employee's bills, most recent first",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if err := listBills(ctx, sf, *receiptID); err != nil {
				return runError{err}
			}
			return nil
		},
	}
}

func newBillCommand(parent *ff.FlagSet, sf storeFlags) *ff.Command {
	fs := ff.NewFlagSet("new").SetParent(parent)
	values := map[bill.Field]*string{
		bill.FieldType:       fs.StringLong("type", "", "Expense type, e.g. 'Transports'"),
		bill.FieldName:       fs.StringLong("name", "", "Expense name"),
		bill.FieldDate:       fs.StringLong("date", "", "Expense date (YYYY-MM-DD)"),
		bill.FieldAmount:     fs.StringLong("amount", "", "Amount including taxes"),
		bill.FieldVAT:        fs.StringLong("vat", "", "VAT amount (optional)"),
		bill.FieldPct:        fs.StringLong("pct", "", "VAT percentage (optional, defaults to 20)"),
		bill.FieldCommentary: fs.StringLong("commentary", "", "Commentary (optional)"),
	}
	file := fs.StringLong("file", "", "Receipt picture (jpg, jpeg, png or gif)")

	return &ff.Command{
		Name:      "new",
		Usage:     "billed new --email EMAIL --file RECEIPT [FLAGS]",
		ShortHelp: "submit a new bill",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if err := newBill(ctx, sf, values, *file); err != nil {
				return runError{err}
			}
			return nil
		},
	}
}

func serve(ctx context.Context, sf storeFlags, port int) error {
	service, closeService, err := openService(ctx, sf)
	if err != nil {
		return err
	}
	defer closeService()

	basicAuth := bill.BasicAuth{
		Username: *sf.authUser,
		Password: *sf.authPass,
	}
	server := bill.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", port)
	errs := make(chan error, 1)
	go func() {
		errs <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if basicAuth.Enabled() {
		slog.Info("Basic auth enabled", "user", basicAuth.Username)
	}

	select {
	case err := <-errs:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		slog.Info("Shutting down...")
		return nil
	}
}

func listBills(ctx context.Context, sf storeFlags, receiptID string) error {
	store, closeStore, err := openStore(ctx, sf)
	if err != nil {
		return err
	}
	defer closeStore()

	session := workflow.Session{Email: *sf.email, Type: "Employee"}
	term := newTerminal(ctx, os.Stdout)
	if *sf.storeURL == "" {
		term.locate = storedReceiptLocation(*sf.storageBackend, *sf.storagePath, *sf.s3Bucket)
	}
	list := workflow.NewBillsList(store, session, term, term, term)
	term.activateList = list.Activate
	if err := list.Activate(ctx); err != nil {
		return err
	}

	if receiptID == "" {
		return nil
	}
	summary, ok := term.summary(receiptID)
	if !ok {
		return bill.MarkAs(fmt.Errorf("no bill with id %q", receiptID), bill.ErrNotFound)
	}
	list.HandleInspectReceipt(summary)
	return nil
}

func newBill(ctx context.Context, sf storeFlags, values map[bill.Field]*string, path string) error {
	store, closeStore, err := openStore(ctx, sf)
	if err != nil {
		return err
	}
	defer closeStore()

	session := workflow.Session{Email: *sf.email, Type: "Employee"}
	term := newTerminal(ctx, os.Stdout)
	form := workflow.NewNewBill(store, session, term, term)
	term.activateList = workflow.NewBillsList(store, session, term, term, term).Activate

	for field, value := range values {
		if err := form.HandleFieldChanged(field, *value); err != nil {
			return err
		}
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening receipt: %w", err)
		}
		defer f.Close()

		err = form.HandleFileSelected(ctx, bill.AttachedFile{
			Name:        filepath.Base(path),
			ContentType: declaredType(path),
			Body:        f,
		})
		if err != nil {
			return err
		}
	}

	return form.HandleSubmit(ctx, form.Form())
}

// declaredType is the content type a file picker would report for path
func declaredType(path string) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// openStore returns the remote store named by --store, or a local one
func openStore(ctx context.Context, sf storeFlags) (workflow.Store, func(), error) {
	if *sf.email == "" {
		return nil, nil, bill.NewValidationError("--email is required")
	}

	if *sf.storeURL == "" {
		return openService(ctx, sf)
	}

	slog.Debug("Using remote bill store", "url", *sf.storeURL)
	client, err := bill.NewClient(bill.ClientConfig{
		BaseURL:   *sf.storeURL,
		BasicAuth: bill.BasicAuth{Username: *sf.authUser, Password: *sf.authPass},
		RetryMax:  *sf.retries,
		Timeout:   *sf.timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating store client: %w", err)
	}
	return client, func() {}, nil
}

// openService opens the local database and receipt storage
func openService(ctx context.Context, sf storeFlags) (*bill.Service, func(), error) {
	slog.Debug("Initializing database...", "path", *sf.dbPath)
	db, err := bill.NewBoltDB(*sf.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	var storage bill.Storage
	switch *sf.storageBackend {
	case "local":
		slog.Debug("Initializing storage...", "path", *sf.storagePath)
		storage, err = bill.NewLocalStorage(*sf.storagePath)
	case "s3":
		slog.Debug("Initializing S3 storage...", "bucket", *sf.s3Bucket, "endpoint", *sf.s3Endpoint)
		storage, err = bill.NewS3Storage(ctx, bill.S3Config{
			Endpoint:  *sf.s3Endpoint,
			Region:    *sf.s3Region,
			Bucket:    *sf.s3Bucket,
			AccessKey: *sf.s3AccessKey,
			SecretKey: *sf.s3SecretKey,
		})
	default:
		err = fmt.Errorf("invalid storage backend %q, valid: local or s3", *sf.storageBackend)
	}
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	return bill.NewService(db, storage), func() { db.Close() }, nil
}
