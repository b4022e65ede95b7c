package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fraudlens/tax-forensics-api/internal/config"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/services"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
	"github.com/gorilla/mux"
)

type ForensicsHandler struct {
	service     services.ForensicsService
	logger      *utils.Logger
	maxFileSize int64
}

func NewForensicsHandler(service services.ForensicsService, cfg *config.Config, logger *utils.Logger) *ForensicsHandler {
	return &ForensicsHandler{
		service:     service,
		logger:      logger,
		maxFileSize: cfg.MaxFileSize,
	}
}

// AnalyzeDocument accepts a multipart upload and runs the forensic battery.
func (h *ForensicsHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	docType, ok := models.ParseDocType(r.URL.Query().Get("doc_type"))
	if !ok {
		respondError(w, h.logger, utils.NewBadRequestError("doc_type must be 'noa', 't1' or 'unknown'"))
		return
	}

	data, header, appErr := h.readUpload(w, r, "file")
	if appErr != nil {
		respondError(w, h.logger, appErr)
		return
	}

	contentType, ok := contentTypeForUpload(header.Filename)
	if !ok {
		respondError(w, h.logger, utils.NewBadRequestError(
			"Unsupported file type. Allowed types: "+strings.Join(config.AllowedExtensions, ", ")))
		return
	}

	h.logger.Info("Analysis upload received",
		"filename", header.Filename,
		"doc_type", docType,
		"size", len(data))

	req := &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		DocType:     docType,
	}

	result, err := h.service.AnalyzeUpload(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetRecords returns stored forensic records with pagination.
func (h *ForensicsHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 1000 || offset < 0 {
		respondError(w, h.logger, utils.NewBadRequestError("limit must be in [1,1000] and offset non-negative"))
		return
	}

	records, err := h.service.GetRecords(r.Context(), limit, offset)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, records)
}

// GetDuplicates returns the full duplicate detection history.
func (h *ForensicsHandler) GetDuplicates(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetDuplicateHistory(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, history)
}

// GetRecord returns the stored forensic record for one identification number.
func (h *ForensicsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	idNumber := mux.Vars(r)["id_number"]
	if strings.TrimSpace(idNumber) == "" {
		respondError(w, h.logger, utils.NewBadRequestError("identification number is required"))
		return
	}

	record, err := h.service.GetRecord(r.Context(), idNumber)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, record)
}

// GetEvidence streams an archived original back by its storage key.
func (h *ForensicsHandler) GetEvidence(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if strings.TrimSpace(key) == "" {
		respondError(w, h.logger, utils.NewBadRequestError("evidence key is required"))
		return
	}

	data, err := h.service.FetchEvidence(r.Context(), key)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// CheckDuplicate checks (and records) a single identification number.
func (h *ForensicsHandler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	idNumber := mux.Vars(r)["id_number"]
	if strings.TrimSpace(idNumber) == "" {
		respondError(w, h.logger, utils.NewBadRequestError("identification number is required"))
		return
	}

	check, err := h.service.CheckDuplicate(r.Context(), idNumber, r.URL.Query().Get("file_name"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"id_number":       idNumber,
		"is_duplicate":    check.IsDuplicate,
		"original_record": check.OriginalRecord,
	})
}

// GetStats returns forensic store statistics.
func (h *ForensicsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, stats)
}

// GetSupportedFormats lists accepted upload formats and size limits.
func (h *ForensicsHandler) GetSupportedFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"formats":        config.AllowedExtensions,
		"max_size_bytes": h.maxFileSize,
		"max_size_mb":    h.maxFileSize / (1024 * 1024),
	})
}

// GetChecks lists the forensic checks the analyzer performs.
func (h *ForensicsHandler) GetChecks(w http.ResponseWriter, r *http.Request) {
	type checkInfo struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		ApplicableTo []string `json:"applicable_to"`
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"checks": []checkInfo{
			{"alignment", "Detects misaligned text rows", []string{"all"}},
			{"fonts", "Analyzes font consistency", []string{"all"}},
			{"metadata", "Examines PDF metadata for suspicious signs", []string{"pdf"}},
			{"numbers", "Checks number formatting consistency", []string{"all"}},
			{"image", "Analyzes image quality and blur", []string{"all"}},
			{"page_numbers", "Verifies page numbering sequence", []string{"noa"}},
			{"noa_id_check", "Detects duplicate NOA identification numbers", []string{"noa"}},
		},
	})
}

// readUpload parses one multipart file field under the configured size cap.
func (h *ForensicsHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, *multipart.FileHeader, *utils.AppError) {
	if r.ContentLength > h.maxFileSize {
		return nil, nil, utils.NewBadRequestError("File exceeds the upload size limit")
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return nil, nil, utils.NewBadRequestError("File exceeds the upload size limit")
		}
		return nil, nil, utils.NewBadRequestError("Invalid form data")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, utils.NewBadRequestError("No '" + field + "' file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, nil, utils.NewInternalError("Failed to read file")
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, nil, utils.NewBadRequestError("File exceeds the upload size limit")
	}
	if len(data) == 0 {
		return nil, nil, utils.NewBadRequestError("Uploaded file is empty")
	}

	return data, header, nil
}

// readAll reads an already-opened multipart file under the size cap.
func readAll(file io.Reader, maxSize int64) ([]byte, *utils.AppError) {
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, utils.NewInternalError("Failed to read file")
	}
	if int64(len(data)) > maxSize {
		return nil, utils.NewBadRequestError("File exceeds the upload size limit")
	}
	if len(data) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}
	return data, nil
}

// contentTypeForUpload maps an accepted upload extension to its MIME type.
func contentTypeForUpload(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf", true
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	}
	return "", false
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	kind := utils.KindInternal

	if appErr, ok := utils.AsAppError(err); ok {
		status = appErr.StatusCode
		message = appErr.Message
		kind = appErr.Kind
	}

	logger.Error("Request error", "status", status, "kind", kind, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "type": string(kind)})
}
