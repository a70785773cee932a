package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/themis/internal/models"
)

// GetAllEmployees returns every employee ordered by uid. A NULL mobile number is returned as an empty string.
func (r *Repository) GetAllEmployees(ctx context.Context) ([]models.Employee, error) {
	defer r.observe("get_employees", time.Now())

	query := `
		SELECT uid, name, current_salary, average_expense, COALESCE(mobile_no, '')
		FROM employees_info
		ORDER BY uid
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		var emp models.Employee
		err = rows.Scan(&emp.UID, &emp.Name, &emp.CurrentSalary, &emp.AverageExpense, &emp.MobileNo)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee rows: %w", err)
	}

	return employees, nil
}

// GetNewEmployees returns every record of the new_employees table.
func (r *Repository) GetNewEmployees(ctx context.Context) ([]models.NewEmployee, error) {
	defer r.observe("get_new_employees", time.Now())

	query := `SELECT name, phone FROM new_employees`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query new employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.NewEmployee, 0)
	for rows.Next() {
		var emp models.NewEmployee
		if err = rows.Scan(&emp.Name, &emp.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan new employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read new employee rows: %w", err)
	}

	return employees, nil
}
