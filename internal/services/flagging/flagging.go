package flagging

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/lib/tabular"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
)

const (
	runType = "flag_employees"

	// FileName is the name of the file written into the output directory.
	FileName = "flagged_employees.csv"
)

// phonePattern accepts exactly ten ASCII digits and nothing else.
var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Report is the result of one flagging run.
type Report struct {
	Path      string
	Employees []models.FlaggedEmployee
}

type Flagger struct {
	log       *slog.Logger
	repo      repository.EmployeeRepoIface
	outputDir string
	metrics   *metrics.Metrics
}

func NewFlagger(log *slog.Logger, repo repository.EmployeeRepoIface, outputDir string, metrics *metrics.Metrics) *Flagger {
	return &Flagger{log: log, repo: repo, outputDir: outputDir, metrics: metrics}
}

func (f *Flagger) initLogger(opn string) *slog.Logger {
	return f.log.With(
		slog.String("op", opn),
		slog.String("division", "flagging"),
	)
}

// IsValidPhoneNumber checks that a mobile number consists of exactly ten ASCII digits.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Evaluate runs both checks on the employee and returns the reasons it should be reviewed,
// salary first, then phone. An empty result means the employee is not flagged.
func Evaluate(employee models.Employee) []models.FlagReason {
	reasons := make([]models.FlagReason, 0)

	if employee.CurrentSalary < employee.AverageExpense {
		reasons = append(reasons, models.ReasonSalaryBelowExpense)
	}

	if !IsValidPhoneNumber(employee.MobileNo) {
		reasons = append(reasons, models.ReasonInvalidPhone)
	}

	return reasons
}

// Flag returns every employee with at least one reason, keyed by uid and kept in input order.
func Flag(employees []models.Employee) []models.FlaggedEmployee {
	flagged := make([]models.FlaggedEmployee, 0)

	for _, employee := range employees {
		reasons := Evaluate(employee)
		if len(reasons) == 0 {
			continue
		}
		flagged = append(flagged, models.FlaggedEmployee{UID: employee.UID, Name: employee.Name, Reasons: reasons})
	}

	return flagged
}

// FlagEmployees flags all stored employees and writes the result to the flagged employees file.
func (f *Flagger) FlagEmployees(ctx context.Context) (report Report, err error) {
	const opn = "Flagging.FlagEmployees"
	log := f.initLogger(opn)

	defer func() {
		f.metrics.ObserveRun(runType, err, float64(time.Now().Unix()))
	}()

	employees, err := f.repo.GetAllEmployees(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load employees", sl.Err(err))
		return Report{}, fmt.Errorf("%w: failed to load employees: %w", models.ErrStore, err)
	}

	flagged := Flag(employees)

	path := filepath.Join(f.outputDir, FileName)
	if err = tabular.WriteFile(path, []string{"UID", "Name", "Reasons"}, records(flagged)); err != nil {
		log.ErrorContext(ctx, "Failed to write flagged employees", "path", path, sl.Err(err))
		return Report{}, fmt.Errorf("%w: failed to write flagged employees: %w", models.ErrWrite, err)
	}

	for _, employee := range flagged {
		for _, reason := range employee.Reasons {
			f.metrics.EmployeesFlagged.WithLabelValues(string(reason)).Inc()
		}
	}

	log.InfoContext(ctx, "Employees flagged", "total", len(employees), "flagged", len(flagged), "path", path)

	return Report{Path: path, Employees: flagged}, nil
}

func records(flagged []models.FlaggedEmployee) [][]string {
	rows := make([][]string, 0, len(flagged))

	for _, employee := range flagged {
		descriptions := make([]string, 0, len(employee.Reasons))
		for _, reason := range employee.Reasons {
			descriptions = append(descriptions, reason.Description())
		}
		rows = append(rows, []string{strconv.Itoa(employee.UID), employee.Name, strings.Join(descriptions, ", ")})
	}

	return rows
}
