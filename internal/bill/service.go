package bill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// FileURLPrefix is the path under which stored receipts are served
const FileURLPrefix = "/api/files/"

// IDGenerator generates unique IDs for bills and receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service stores bills and their receipts
type Service struct {
	db          DB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, storage Storage) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// List returns the bills owned by email
func (s *Service) List(_ context.Context, email string) ([]Bill, error) {
	stored, err := s.db.ListBills(email)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	bills := make([]Bill, 0, len(stored))
	for _, b := range stored {
		bills = append(bills, *b)
	}
	return bills, nil
}

// UploadFile checks a receipt is a picture, stores it for email and returns its URL
func (s *Service) UploadFile(ctx context.Context, email string, file AttachedFile) (string, error) {
	if email == "" {
		return "", NewValidationError("an owner email is required to upload a receipt")
	}
	if !IsAcceptable(file.ContentType) {
		return "", NotPicture()
	}
	if file.Body == nil {
		return "", NewValidationError("the uploaded file is empty")
	}

	isPicture, body, err := sniffPicture(file.Body)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if !isPicture {
		slog.Warn("Receipt content is not a picture",
			"email", email,
			"filename", file.Name,
			"content_type", file.ContentType,
		)
		return "", NotPicture()
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	key := fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(file.Name))
	savedKey, err := s.storage.Save(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}

	slog.Info("Receipt stored", "email", email, "key", savedKey, "file_size", len(data))
	return FileURLPrefix + savedKey, nil
}

// Create validates and persists a new bill. The store assigns the ID,
// the creation time and the pending status.
func (s *Service) Create(_ context.Context, b Bill) (Bill, error) {
	b.ID = s.idGenerator.Generate()
	b.Status = StatusPending
	b.CreatedAt = s.timeSource.Now()

	if err := b.Validate(); err != nil {
		return Bill{}, err
	}

	if err := s.db.SaveBill(&b); err != nil {
		return Bill{}, fmt.Errorf("saving bill to database: %w", err)
	}
	return b, nil
}

// GetBill retrieves a bill by ID
func (s *Service) GetBill(id string) (*Bill, error) {
	b, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return b, nil
}

// GetFile retrieves a stored receipt and its content type
func (s *Service) GetFile(ctx context.Context, key string) ([]byte, string, error) {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}
	return data, contentType, nil
}
