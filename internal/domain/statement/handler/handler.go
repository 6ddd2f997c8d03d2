// Package handler exposes statement ingestion over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/service"
	"github.com/FACorreiaa/card-reward-tracker/pkg/storage"
)

// maxUploadBytes caps statement uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// StatementHandler handles statement upload and management endpoints.
type StatementHandler struct {
	service *service.Service
	archive storage.Archive
	logger  *slog.Logger
}

// NewStatementHandler creates a statement handler.
func NewStatementHandler(svc *service.Service, archive storage.Archive, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		service: svc,
		archive: archive,
		logger:  logger,
	}
}

type ingestResponse struct {
	*service.IngestResult
	FileID *uuid.UUID `json:"file_id,omitempty"`
}

type ingestRecordsRequest struct {
	UserID      uuid.UUID   `json:"user_id"`
	StatementID string      `json:"statement_id"`
	Bank        string      `json:"bank,omitempty"`
	Records     []rawRecord `json:"records"`
}

type rawRecord struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type,omitempty"`
	CardLast4   string `json:"card_last4,omitempty"`
}

// Ingest handles POST /v1/statements. The body is either multipart form data
// with a "file" part plus user_id, statement_id, and optional bank fields, or
// a JSON document carrying already-extracted records.
func (h *StatementHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.ingestRecords(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	userID, err := uuid.Parse(r.FormValue("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	statementID := r.FormValue("statement_id")
	if statementID == "" {
		respondError(w, http.StatusBadRequest, "statement_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	// Archive the original bytes first so a failed ingestion can be replayed.
	info, err := h.archive.Store(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to archive statement file",
			slog.String("statement_id", statementID),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "failed to store statement file")
		return
	}

	reader, _, err := h.archive.Open(r.Context(), userID, info.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read stored statement file")
		return
	}
	defer reader.Close()

	result, err := h.service.Ingest(r.Context(), service.IngestRequest{
		UserID:      userID,
		StatementID: statementID,
		Bank:        r.FormValue("bank"),
		Filename:    header.Filename,
		File:        reader,
	})
	if err != nil {
		h.logger.Error("statement ingestion failed",
			slog.String("statement_id", statementID),
			slog.Any("error", err),
		)
		respondError(w, http.StatusUnprocessableEntity, "statement could not be ingested")
		return
	}

	respondJSON(w, http.StatusOK, ingestResponse{IngestResult: result, FileID: &info.ID})
}

// ingestRecords handles the JSON form of POST /v1/statements.
func (h *StatementHandler) ingestRecords(w http.ResponseWriter, r *http.Request) {
	var req ingestRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	if req.StatementID == "" {
		respondError(w, http.StatusBadRequest, "statement_id is required")
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "records must not be empty")
		return
	}

	records := make([]statement.RawRecord, len(req.Records))
	for i, rec := range req.Records {
		records[i] = statement.RawRecord{
			Ordinal:     i,
			Date:        rec.Date,
			Description: rec.Description,
			Amount:      rec.Amount,
			TypeFlag:    rec.Type,
			CardLast4:   rec.CardLast4,
		}
	}

	result, err := h.service.IngestRecords(r.Context(), service.RecordsRequest{
		UserID:      req.UserID,
		StatementID: req.StatementID,
		Bank:        req.Bank,
		Records:     records,
	})
	if err != nil {
		h.logger.Error("statement ingestion failed",
			slog.String("statement_id", req.StatementID),
			slog.Any("error", err),
		)
		respondError(w, http.StatusUnprocessableEntity, "statement could not be ingested")
		return
	}

	respondJSON(w, http.StatusOK, ingestResponse{IngestResult: result})
}

// ListFiles handles GET /v1/users/{userID}/statements/files.
func (h *StatementHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	files, err := h.archive.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list statement files")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
