package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/server"
	"github.com/UnknownOlympus/themis/internal/services/flagging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlangs struct {
	matches  []models.FeedbackMatch
	sentence []string
	err      error
	got      string
}

func (f *fakeSlangs) DetectSlangs(context.Context) ([]models.FeedbackMatch, error) {
	return f.matches, f.err
}

func (f *fakeSlangs) MatchSentence(_ context.Context, sentence string) ([]string, error) {
	f.got = sentence
	return f.sentence, f.err
}

type fakeFlagger struct {
	report flagging.Report
	err    error
}

func (f *fakeFlagger) FlagEmployees(context.Context) (flagging.Report, error) {
	return f.report, f.err
}

type fakeExporter struct {
	files map[string]string
	err   error
}

func (f *fakeExporter) ExportAll(context.Context) (map[string]string, error) {
	return f.files, f.err
}

func (f *fakeExporter) ExportTable(_ context.Context, table string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path, ok := f.files[table]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrTableNotAllowed, table)
	}
	return path, nil
}

type fakeNotifier struct {
	outcomes []models.DispatchOutcome
	err      error
}

func (f *fakeNotifier) SendOnboardingMessages(context.Context) ([]models.DispatchOutcome, error) {
	return f.outcomes, f.err
}

type fixture struct {
	slangs   *fakeSlangs
	flagger  *fakeFlagger
	exporter *fakeExporter
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		slangs:   &fakeSlangs{},
		flagger:  &fakeFlagger{},
		exporter: &fakeExporter{},
		notifier: &fakeNotifier{},
		metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
	}
	api := server.NewAPI(slog.New(slog.NewTextHandler(io.Discard, nil)), f.metrics,
		f.slangs, f.flagger, f.exporter, f.notifier)
	f.handler = api.Handler()

	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	return rr
}

func TestDetectSlangsEndpoint(t *testing.T) {
	t.Run("returns matches", func(t *testing.T) {
		f := newFixture()
		f.slangs.matches = []models.FeedbackMatch{{ID: 2, Feedback: "lol ok", Slangs: []string{"lol"}}}

		rr := f.do(http.MethodGet, "/detect-slangs", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `[{"id":2,"feedback":"lol ok","slangs":["lol"]}]`, rr.Body.String())
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		f := newFixture()
		f.slangs.matches = []models.FeedbackMatch{}

		rr := f.do(http.MethodGet, "/detect-slangs", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.slangs.err = fmt.Errorf("%w: connection refused", models.ErrStore)

		rr := f.do(http.MethodGet, "/detect-slangs", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"store error: connection refused"}`, rr.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		f := newFixture()

		rr := f.do(http.MethodPost, "/detect-slangs", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestCheckSlangsEndpoint(t *testing.T) {
	t.Run("returns slangs of the text", func(t *testing.T) {
		f := newFixture()
		f.slangs.sentence = []string{"brb"}

		rr := f.do(http.MethodPost, "/slangs/check", `{"text":"brb soon"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"slangs":["brb"]}`, rr.Body.String())
		assert.Equal(t, "brb soon", f.slangs.got)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture()

		rr := f.do(http.MethodPost, "/slangs/check", `{"text":`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, rr.Body.String())
	})

	t.Run("missing text", func(t *testing.T) {
		f := newFixture()

		rr := f.do(http.MethodPost, "/slangs/check", `{}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"text is required"}`, rr.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.slangs.err = models.ErrStore

		rr := f.do(http.MethodPost, "/slangs/check", `{"text":"hi"}`)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestFlaggedEmployeesEndpoint(t *testing.T) {
	t.Run("returns file path and count", func(t *testing.T) {
		f := newFixture()
		f.flagger.report = flagging.Report{
			Path: "exports/flagged_employees.csv",
			Employees: []models.FlaggedEmployee{
				{UID: 1, Name: "Ann", Reasons: []models.FlagReason{models.ReasonInvalidPhone}},
				{UID: 2, Name: "Ann", Reasons: []models.FlagReason{models.ReasonSalaryBelowExpense}},
			},
		}

		rr := f.do(http.MethodGet, "/flagged-employees", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"flagged_employees_csv":"exports/flagged_employees.csv","flagged_count":2}`,
			rr.Body.String())
	})

	t.Run("write failure", func(t *testing.T) {
		f := newFixture()
		f.flagger.err = fmt.Errorf("%w: disk full", models.ErrWrite)

		rr := f.do(http.MethodGet, "/flagged-employees", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"write error: disk full"}`, rr.Body.String())
	})
}

func TestTransferEndpoints(t *testing.T) {
	t.Run("all tables", func(t *testing.T) {
		f := newFixture()
		f.exporter.files = map[string]string{"slang_words": "exports/slang_words.csv"}

		rr := f.do(http.MethodPost, "/transfer-db-to-csv", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"message":"Data transferred to CSV files successfully.","csv_files":{"slang_words":"exports/slang_words.csv"}}`,
			rr.Body.String())
	})

	t.Run("batch failure", func(t *testing.T) {
		f := newFixture()
		f.exporter.err = models.ErrStore

		rr := f.do(http.MethodPost, "/transfer-db-to-csv", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"store error"}`, rr.Body.String())
	})

	t.Run("single table", func(t *testing.T) {
		f := newFixture()
		f.exporter.files = map[string]string{"new_employees": "exports/new_employees.csv"}

		rr := f.do(http.MethodPost, "/transfer-db-to-csv/new_employees", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"message":"Data transferred to CSV files successfully.","csv_files":{"new_employees":"exports/new_employees.csv"}}`,
			rr.Body.String())
	})

	t.Run("unknown table", func(t *testing.T) {
		f := newFixture()
		f.exporter.files = map[string]string{}

		rr := f.do(http.MethodPost, "/transfer-db-to-csv/pg_shadow", "")

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "table is not allowed for export")
	})
}

func TestSendOnboardingEndpoint(t *testing.T) {
	t.Run("all sent", func(t *testing.T) {
		f := newFixture()
		f.notifier.outcomes = []models.DispatchOutcome{
			{Name: "Ann", Phone: "+15550001", Status: models.DispatchSent, MessageID: "SM1"},
		}

		rr := f.do(http.MethodPost, "/send-onboarding-messages", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"message":"Onboarding SMS messages sent successfully.",
			"results":[{"name":"Ann","phone":"+15550001","status":"sent","messageId":"SM1"}]
		}`, rr.Body.String())
	})

	t.Run("no new employees", func(t *testing.T) {
		f := newFixture()

		rr := f.do(http.MethodPost, "/send-onboarding-messages", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"message":"Onboarding SMS messages sent successfully.","results":[]}`,
			rr.Body.String())
	})

	t.Run("partial failure reports every record", func(t *testing.T) {
		f := newFixture()
		f.notifier.outcomes = []models.DispatchOutcome{
			{Name: "Ann", Phone: "+15550001", Status: models.DispatchSent, MessageID: "SM1"},
			{Name: "Bob", Phone: "bad", Status: models.DispatchFailed, Error: "dispatch error: invalid number"},
		}

		rr := f.do(http.MethodPost, "/send-onboarding-messages", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)

		var body struct {
			Error   string                   `json:"error"`
			Results []models.DispatchOutcome `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "1 of 2 onboarding messages failed", body.Error)
		assert.Len(t, body.Results, 2)
		assert.Equal(t, models.DispatchFailed, body.Results[1].Status)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.notifier.err = errors.New("store error: timeout")

		rr := f.do(http.MethodPost, "/send-onboarding-messages", "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"store error: timeout"}`, rr.Body.String())
	})
}

func TestAPIMiddleware(t *testing.T) {
	t.Run("generates a request id", func(t *testing.T) {
		f := newFixture()
		f.slangs.matches = []models.FeedbackMatch{}

		rr := f.do(http.MethodGet, "/detect-slangs", "")

		assert.Len(t, rr.Header().Get(server.RequestIDHeader), 36)
	})

	t.Run("keeps the caller request id", func(t *testing.T) {
		f := newFixture()
		f.slangs.matches = []models.FeedbackMatch{}

		req := httptest.NewRequest(http.MethodGet, "/detect-slangs", nil)
		req.Header.Set(server.RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", rr.Header().Get(server.RequestIDHeader))
	})

	t.Run("counts requests per route", func(t *testing.T) {
		f := newFixture()
		f.slangs.matches = []models.FeedbackMatch{}

		f.do(http.MethodGet, "/detect-slangs", "")
		f.do(http.MethodGet, "/detect-slangs", "")

		assert.InDelta(t, 2, testutil.ToFloat64(
			f.metrics.HTTPRequests.WithLabelValues("detect_slangs", "200", "get")), 0)
	})
}
