package repository

import (
	"context"
	"time"

	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// FeedbackRepoIface represents the interface for reading employee feedback.
type FeedbackRepoIface interface {
	GetAllFeedback(ctx context.Context) ([]models.Feedback, error)
}

func NewFeedbackRepository(db Database, metrics *metrics.Metrics) FeedbackRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// SlangRepoIface represents the interface for querying the slang vocabulary.
type SlangRepoIface interface {
	GetSlangWords(ctx context.Context) ([]string, error)
	IsSlang(ctx context.Context, word string) (bool, error)
}

func NewSlangRepository(db Database, metrics *metrics.Metrics) SlangRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	GetAllEmployees(ctx context.Context) ([]models.Employee, error)
	GetNewEmployees(ctx context.Context) ([]models.NewEmployee, error)
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// TableRepoIface represents the interface for enumerating and dumping database tables.
type TableRepoIface interface {
	ListTables(ctx context.Context) ([]string, error)
	ReadTable(ctx context.Context, table string) (models.Table, error)
}

func NewTableRepository(db Database, metrics *metrics.Metrics) TableRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// observe records the duration of a query started at startTime.
func (r *Repository) observe(queryType string, startTime time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
