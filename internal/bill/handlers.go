package bill

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize bounds the multipart form of a receipt upload
const maxUploadSize = int64(10 << 20)

// uploadResponse is returned once a receipt has been stored
type uploadResponse struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps a service error onto a status code
func writeServiceError(w http.ResponseWriter, err error) {
	switch Kind(err) {
	case ErrValidation:
		writeError(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		writeError(w, "Not found", http.StatusNotFound)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleListBills returns the bills of the owner given in the email query parameter
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, "email query parameter required", http.StatusBadRequest)
		return
	}

	bills, err := s.service.List(r.Context(), email)
	if err != nil {
		slog.Error("Error listing bills", "email", email, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bills)
}

// handleGetBill returns a single bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.service.GetBill(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCreateBill persists a bill sent as JSON
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var b Bill
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.service.Create(r.Context(), b)
	if err != nil {
		slog.Error("Error creating bill", "email", b.Email, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleUploadFile stores a receipt sent as multipart form with file and email fields
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if strings.Contains(err.Error(), "request body too large") {
			errorMsg = "File is too large. Maximum size is 10MB."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	}

	fileURL, err := s.service.UploadFile(r.Context(), r.FormValue("email"), AttachedFile{
		Name:        header.Filename,
		ContentType: contentType,
		Body:        f,
	})
	if err != nil {
		slog.Error("Error uploading receipt", "filename", header.Filename, "content_type", contentType, "error", err)
		if IsNotPicture(err) {
			writeError(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{FileURL: fileURL, FileName: header.Filename})
}

// handleGetFile returns a stored receipt
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetFile(r.Context(), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
