package handlers

import (
	"net/http"
	"strings"

	"github.com/fraudlens/tax-forensics-api/internal/config"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/services"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
)

type ComparisonHandler struct {
	service services.ComparisonService
	logger  *utils.Logger
	reader  *ForensicsHandler
}

func NewComparisonHandler(service services.ComparisonService, cfg *config.Config, logger *utils.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		service: service,
		logger:  logger,
		reader:  &ForensicsHandler{logger: logger, maxFileSize: cfg.MaxFileSize},
	}
}

// ValidateDocuments accepts a T1 and a NOA PDF and compares their
// AI-extracted fields.
func (h *ComparisonHandler) ValidateDocuments(w http.ResponseWriter, r *http.Request) {
	t1Data, t1Header, appErr := h.reader.readUpload(w, r, "t1_file")
	if appErr != nil {
		respondError(w, h.logger, appErr)
		return
	}

	noaFile, noaHeader, err := r.FormFile("noa_file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No 'noa_file' file provided"))
		return
	}
	defer noaFile.Close()

	noaData, readErr := readAll(noaFile, h.reader.maxFileSize)
	if readErr != nil {
		respondError(w, h.logger, readErr)
		return
	}

	if !strings.HasSuffix(strings.ToLower(t1Header.Filename), ".pdf") {
		respondError(w, h.logger, utils.NewBadRequestError("T1 file must be PDF format"))
		return
	}
	if !strings.HasSuffix(strings.ToLower(noaHeader.Filename), ".pdf") {
		respondError(w, h.logger, utils.NewBadRequestError("NOA file must be PDF format"))
		return
	}

	h.logger.Info("Comparison upload received",
		"t1_filename", t1Header.Filename,
		"noa_filename", noaHeader.Filename)

	result, svcErr := h.service.ValidateDocuments(r.Context(),
		&models.UploadRequest{File: t1Data, Filename: t1Header.Filename, ContentType: "application/pdf", DocType: models.DocTypeT1},
		&models.UploadRequest{File: noaData, Filename: noaHeader.Filename, ContentType: "application/pdf", DocType: models.DocTypeNOA},
	)
	if svcErr != nil {
		respondError(w, h.logger, svcErr)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
