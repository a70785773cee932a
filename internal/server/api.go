package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/services/flagging"
	"github.com/UnknownOlympus/themis/internal/services/onboarding"
	"github.com/go-playground/validator/v10"
)

const (
	maxBodyBytes = 1 << 20

	exportSuccessMessage     = "Data transferred to CSV files successfully."
	onboardingSuccessMessage = "Onboarding SMS messages sent successfully."
)

type SlangDetector interface {
	DetectSlangs(ctx context.Context) ([]models.FeedbackMatch, error)
	MatchSentence(ctx context.Context, sentence string) ([]string, error)
}

type EmployeeFlagger interface {
	FlagEmployees(ctx context.Context) (flagging.Report, error)
}

type TableExporter interface {
	ExportAll(ctx context.Context) (map[string]string, error)
	ExportTable(ctx context.Context, table string) (string, error)
}

type OnboardingNotifier interface {
	SendOnboardingMessages(ctx context.Context) ([]models.DispatchOutcome, error)
}

// API serves the employee data endpoints.
type API struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	slangs   SlangDetector
	flagger  EmployeeFlagger
	exporter TableExporter
	notifier OnboardingNotifier
}

func NewAPI(
	log *slog.Logger,
	metrics *metrics.Metrics,
	slangs SlangDetector,
	flagger EmployeeFlagger,
	exporter TableExporter,
	notifier OnboardingNotifier,
) *API {
	return &API{
		log:      log.With(slog.String("division", "api")),
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		slangs:   slangs,
		flagger:  flagger,
		exporter: exporter,
		notifier: notifier,
	}
}

// Handler returns the routed API with request id, access log and metrics middleware applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.route(mux, "GET /detect-slangs", "detect_slangs", a.handleDetectSlangs)
	a.route(mux, "POST /slangs/check", "check_slangs", a.handleCheckSlangs)
	a.route(mux, "GET /flagged-employees", "flagged_employees", a.handleFlaggedEmployees)
	a.route(mux, "POST /transfer-db-to-csv", "transfer_db_to_csv", a.handleTransferAll)
	a.route(mux, "POST /transfer-db-to-csv/{table}", "transfer_table_to_csv", a.handleTransferTable)
	a.route(mux, "POST /send-onboarding-messages", "send_onboarding_messages", a.handleSendOnboarding)

	return withRequestID(withLogging(a.log, mux))
}

func (a *API) route(mux *http.ServeMux, pattern, name string, handler http.HandlerFunc) {
	mux.Handle(pattern, instrument(a.metrics, name, handler))
}

// Start serves the API on port until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	return serve(ctx, a.log.With(slog.String("server", "api")), srv)
}

func (a *API) handleDetectSlangs(w http.ResponseWriter, r *http.Request) {
	matches, err := a.slangs.DetectSlangs(r.Context())
	if err != nil {
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}

	a.jsonResponse(w, r, http.StatusOK, matches)
}

type checkSlangsRequest struct {
	Text string `json:"text" validate:"required"`
}

func (a *API) handleCheckSlangs(w http.ResponseWriter, r *http.Request) {
	var req checkSlangsRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.errorResponse(w, r, http.StatusBadRequest, "text is required")
		return
	}

	found, err := a.slangs.MatchSentence(r.Context(), req.Text)
	if err != nil {
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}

	a.jsonResponse(w, r, http.StatusOK, map[string][]string{"slangs": found})
}

func (a *API) handleFlaggedEmployees(w http.ResponseWriter, r *http.Request) {
	report, err := a.flagger.FlagEmployees(r.Context())
	if err != nil {
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}

	a.jsonResponse(w, r, http.StatusOK, map[string]any{
		"flagged_employees_csv": report.Path,
		"flagged_count":         len(report.Employees),
	})
}

func (a *API) handleTransferAll(w http.ResponseWriter, r *http.Request) {
	files, err := a.exporter.ExportAll(r.Context())
	if err != nil {
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}

	a.jsonResponse(w, r, http.StatusOK, map[string]any{
		"message":   exportSuccessMessage,
		"csv_files": files,
	})
}

func (a *API) handleTransferTable(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")

	path, err := a.exporter.ExportTable(r.Context(), table)
	switch {
	case errors.Is(err, models.ErrTableNotAllowed):
		a.failure(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}

	a.jsonResponse(w, r, http.StatusOK, map[string]any{
		"message":   exportSuccessMessage,
		"csv_files": map[string]string{table: path},
	})
}

func (a *API) handleSendOnboarding(w http.ResponseWriter, r *http.Request) {
	outcomes, err := a.notifier.SendOnboardingMessages(r.Context())
	if err != nil {
		a.failure(w, r, http.StatusInternalServerError, err)
		return
	}
	if outcomes == nil {
		outcomes = []models.DispatchOutcome{}
	}

	if failed := onboarding.CountFailed(outcomes); failed > 0 {
		a.jsonResponse(w, r, http.StatusInternalServerError, map[string]any{
			"error":   fmt.Sprintf("%d of %d onboarding messages failed", failed, len(outcomes)),
			"results": outcomes,
		})
		return
	}

	a.jsonResponse(w, r, http.StatusOK, map[string]any{
		"message": onboardingSuccessMessage,
		"results": outcomes,
	})
}

// failure logs err and answers with its message.
func (a *API) failure(w http.ResponseWriter, r *http.Request, status int, err error) {
	a.log.ErrorContext(r.Context(), "Request failed",
		slog.String("request_id", RequestID(r.Context())),
		slog.String("path", r.URL.Path),
		sl.Err(err),
	)
	a.errorResponse(w, r, status, err.Error())
}

func (a *API) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.log.ErrorContext(r.Context(), "Failed to encode response", sl.Err(err))
	}
}

func (a *API) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	a.jsonResponse(w, r, status, map[string]string{"error": message})
}
