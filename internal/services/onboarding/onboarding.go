package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
)

const runType = "onboarding"

// Sender dispatches a single text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to, from, body string) (string, error)
}

type Notifier struct {
	log     *slog.Logger
	repo    repository.EmployeeRepoIface
	sender  Sender
	from    string
	metrics *metrics.Metrics
}

func NewNotifier(
	log *slog.Logger,
	repo repository.EmployeeRepoIface,
	sender Sender,
	from string,
	metrics *metrics.Metrics,
) *Notifier {
	return &Notifier{log: log, repo: repo, sender: sender, from: from, metrics: metrics}
}

func (n *Notifier) initLogger(opn string) *slog.Logger {
	return n.log.With(
		slog.String("op", opn),
		slog.String("division", "onboarding"),
	)
}

// WelcomeMessage returns the onboarding text for a new employee.
func WelcomeMessage(name string) string {
	return fmt.Sprintf("Welcome, %s! We're excited to have you on board.", name)
}

// SendOnboardingMessages sends one welcome message per new employee, one at a time.
// A failed send does not stop the batch; every record gets an outcome. Only a store
// failure is returned as an error.
func (n *Notifier) SendOnboardingMessages(ctx context.Context) (outcomes []models.DispatchOutcome, err error) {
	const opn = "Onboarding.SendOnboardingMessages"
	log := n.initLogger(opn)

	defer func() {
		runErr := err
		if runErr == nil && CountFailed(outcomes) > 0 {
			runErr = models.ErrDispatch
		}
		n.metrics.ObserveRun(runType, runErr, float64(time.Now().Unix()))
	}()

	employees, err := n.repo.GetNewEmployees(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load new employees", sl.Err(err))
		return nil, fmt.Errorf("%w: failed to load new employees: %w", models.ErrStore, err)
	}

	outcomes = make([]models.DispatchOutcome, 0, len(employees))
	for _, employee := range employees {
		outcome := models.DispatchOutcome{Name: employee.Name, Phone: employee.Phone}

		messageID, sendErr := n.send(ctx, employee)
		if sendErr != nil {
			log.WarnContext(ctx, "Failed to send onboarding message", "name", employee.Name, sl.Err(sendErr))
			outcome.Status = models.DispatchFailed
			outcome.Error = sendErr.Error()
		} else {
			outcome.Status = models.DispatchSent
			outcome.MessageID = messageID
		}

		n.metrics.MessagesSent.WithLabelValues(outcome.Status).Inc()
		outcomes = append(outcomes, outcome)
	}

	log.InfoContext(ctx, "Onboarding messages dispatched",
		"total", len(outcomes), "failed", CountFailed(outcomes))

	return outcomes, nil
}

func (n *Notifier) send(ctx context.Context, employee models.NewEmployee) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrDispatch, err)
	}

	messageID, err := n.sender.Send(ctx, employee.Phone, n.from, WelcomeMessage(employee.Name))
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrDispatch, err)
	}

	return messageID, nil
}

// CountFailed returns the number of outcomes that were not sent.
func CountFailed(outcomes []models.DispatchOutcome) int {
	var failed int
	for _, outcome := range outcomes {
		if outcome.Status != models.DispatchSent {
			failed++
		}
	}

	return failed
}
