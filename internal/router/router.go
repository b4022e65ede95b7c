package router

import (
	"net/http"

	"github.com/fraudlens/tax-forensics-api/internal/config"
	"github.com/fraudlens/tax-forensics-api/internal/handlers"
	"github.com/fraudlens/tax-forensics-api/internal/middleware"
	"github.com/fraudlens/tax-forensics-api/internal/services"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(forensicsService services.ForensicsService, comparisonService services.ComparisonService, cfg *config.Config, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	forensicsHandler := handlers.NewForensicsHandler(forensicsService, cfg, logger)
	comparisonHandler := handlers.NewComparisonHandler(comparisonService, cfg, logger)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Forensic analysis
	api.HandleFunc("/forensics/analyze", forensicsHandler.AnalyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/forensics/records", forensicsHandler.GetRecords).Methods(http.MethodGet)
	api.HandleFunc("/forensics/records/{id_number}", forensicsHandler.GetRecord).Methods(http.MethodGet)
	api.HandleFunc("/forensics/evidence/{key:.+}", forensicsHandler.GetEvidence).Methods(http.MethodGet)
	api.HandleFunc("/forensics/duplicates", forensicsHandler.GetDuplicates).Methods(http.MethodGet)
	api.HandleFunc("/forensics/check-duplicate/{id_number}", forensicsHandler.CheckDuplicate).Methods(http.MethodGet)
	api.HandleFunc("/forensics/stats", forensicsHandler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/forensics/supported-formats", forensicsHandler.GetSupportedFormats).Methods(http.MethodGet)
	api.HandleFunc("/forensics/checks", forensicsHandler.GetChecks).Methods(http.MethodGet)

	// Cross-document comparison
	api.HandleFunc("/comparison/validate", comparisonHandler.ValidateDocuments).Methods(http.MethodPost)

	return r
}
