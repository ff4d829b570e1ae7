package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lezzdif22/payslip/internal/batch"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/metrics"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/parser"
	"github.com/lezzdif22/payslip/internal/parsererror"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/store"
)

// DefaultMaxUpload bounds uploaded sheets.
const DefaultMaxUpload = 10 << 20

// Handler holds the collaborators behind the HTTP routes.
type Handler struct {
	parser    parser.ReaderParser
	generator *batch.Generator
	book      store.AddressBook
	metrics   *metrics.Recorder
	logger    logging.Logger
	outDir    string

	MaxUpload int64
}

// NewHandler creates a Handler. generator, book and rec may be nil; the
// routes that need them then answer 503.
func NewHandler(p parser.ReaderParser, gen *batch.Generator, book store.AddressBook, rec *metrics.Recorder, logger logging.Logger, outDir string) *Handler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Handler{
		parser:    p,
		generator: gen,
		book:      book,
		metrics:   rec,
		logger:    logger,
		outDir:    outDir,
		MaxUpload: DefaultMaxUpload,
	}
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PreviewResponse is returned by POST /api/preview.
type PreviewResponse struct {
	BatchID   string                    `json:"batch_id"`
	Source    string                    `json:"source"`
	Encoding  string                    `json:"encoding"`
	HeaderRow int                       `json:"header_row"`
	Periods   []models.PeriodDescriptor `json:"periods"`
	Records   []models.EmployeeRecord   `json:"records"`
	Skips     []models.SkipEntry        `json:"skips"`
	Processed int                       `json:"processed"`
	Skipped   int                       `json:"skipped"`
}

// GenerateResponse is returned by POST /api/generate.
type GenerateResponse struct {
	BatchID  string               `json:"batch_id"`
	Outcomes []batch.Outcome      `json:"outcomes"`
	Skips    []models.SkipEntry   `json:"skips"`
	Counts   map[batch.Status]int `json:"counts"`
}

// EmailResponse is returned by a single address lookup.
type EmailResponse struct {
	Email string `json:"email"`
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Preview parses the uploaded sheet and returns every record and skip.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	b, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	records, skips := b.Collect()
	h.metrics.ObserveRun(len(records), skips, 0)

	if records == nil {
		records = []models.EmployeeRecord{}
	}
	if skips == nil {
		skips = []models.SkipEntry{}
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		BatchID:   b.ID,
		Source:    b.Source,
		Encoding:  b.Encoding,
		HeaderRow: b.HeaderRow,
		Periods:   b.Periods,
		Records:   records,
		Skips:     skips,
		Processed: len(records),
		Skipped:   len(skips),
	})
}

// Generate renders payslips for the uploaded sheet.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "Payslip generation is not configured", nil)
		return
	}
	b, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	res, err := h.generator.Generate(r.Context(), b, h.outDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate payslips", err)
		return
	}
	skips := res.Skips
	if skips == nil {
		skips = []models.SkipEntry{}
	}
	writeJSON(w, http.StatusOK, GenerateResponse{
		BatchID:  res.BatchID,
		Outcomes: res.Outcomes,
		Skips:    skips,
		Counts:   res.Counts(),
	})
}

// GetEmails looks up one address when any of seq, account_no or name is
// given, and lists the whole address book otherwise.
func (h *Handler) GetEmails(w http.ResponseWriter, r *http.Request) {
	if h.book == nil {
		writeError(w, http.StatusServiceUnavailable, "Address book is not configured", nil)
		return
	}

	q := r.URL.Query()
	seqText, account, name := q.Get("seq"), q.Get("account_no"), q.Get("name")
	if seqText == "" && account == "" && name == "" {
		entries, err := h.book.All(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list addresses", err)
			return
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	var seq *int
	if seqText != "" {
		n, err := strconv.Atoi(strings.TrimSpace(seqText))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid seq", err)
			return
		}
		seq = &n
	}

	email, err := h.book.Lookup(r.Context(), models.BuildLookupKeys(seq, account, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up address", err)
		return
	}
	if email == "" {
		writeError(w, http.StatusNotFound, "Address not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, EmailResponse{Email: email})
}

// PutEmail stores an address.
func (h *Handler) PutEmail(w http.ResponseWriter, r *http.Request) {
	if h.book == nil {
		writeError(w, http.StatusServiceUnavailable, "Address book is not configured", nil)
		return
	}

	var entry store.Entry
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(entry.Keys()) == 0 {
		writeError(w, http.StatusBadRequest, "One of seq, account_no or name is required", nil)
		return
	}
	if err := h.book.Remember(r.Context(), entry); err != nil {
		if errors.Is(err, store.ErrNoEmail) {
			writeError(w, http.StatusBadRequest, "Email is required", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to store address", err)
		return
	}
	writeJSON(w, http.StatusOK, EmailResponse{Email: store.NormalizeEmail(entry.Email)})
}

// parseUpload runs the engine on the request's sheet, writing the error
// response itself when that fails.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) (*payrollparser.Batch, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)

	body, name, err := h.upload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return nil, false
	}
	defer body.Close()

	b, err := h.parser.Parse(body, name)
	if err != nil {
		status := http.StatusBadRequest
		if parsererror.IsFatal(err) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.WithError(err).Warn("Upload rejected", logging.F(logging.FieldFile, name))
		writeError(w, status, "Failed to parse payroll sheet", err)
		return nil, false
	}
	return b, true
}

func (h *Handler) upload(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.csv"
		}
		return r.Body, filepath.Base(name), nil
	}

	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		return nil, "", fmt.Errorf("failed to read form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("missing \"file\" part: %w", err)
	}
	return file, filepath.Base(header.Filename), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
