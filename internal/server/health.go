package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/themis/internal/client"
	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
)

const healthClientTimeout = 5 * time.Second

type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether the database and the messaging provider are reachable.
type HealthChecker struct {
	db         DBPinger
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
}

func NewHealthChecker(db DBPinger, apiURL string, log *slog.Logger) *HealthChecker {
	return &HealthChecker{
		db:         db,
		apiURL:     apiURL,
		httpClient: client.CreateHTTPClient(log, healthClientTimeout),
		log:        log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(ctx, "Health check failed: DB ping", sl.Err(err))
	} else {
		status["database"] = "ok"
	}

	apiStatus := h.checkMessagingAPI(ctx)
	status["messaging_api"] = apiStatus
	if apiStatus != "ok" {
		overallStatus = http.StatusServiceUnavailable
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err := json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(ctx, "Failed to write health check response", sl.Err(err))
	}

	h.log.DebugContext(ctx, "Health checks completed", "status", overallStatus)
}

// checkMessagingAPI sends a HEAD request to the provider. Any status below 500 means the API answers;
// the base URL of most providers replies 401 or 404 without credentials.
func (h *HealthChecker) checkMessagingAPI(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.apiURL, nil)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: invalid messaging API url", "url", h.apiURL, sl.Err(err))
		return "unreachable"
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: messaging API unreachable", "url", h.apiURL, sl.Err(err))
		return "unreachable"
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(ctx, "Failed to close response body", sl.Err(err))
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.WarnContext(
			ctx,
			"Health check failed: messaging API returned error status",
			"url",
			h.apiURL,
			"status_code",
			resp.StatusCode,
		)
		return "degraded"
	}

	return "ok"
}
