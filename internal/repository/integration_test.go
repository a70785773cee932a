//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	const (
		dbName   = "employees"
		user     = "employeedb"
		password = "Password@1"
	)

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := repository.NewDatabase(host, port.Port(), user, password, dbName)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, goose.Up(stdlib.OpenDBFromPool(pool), "../../migrations"))

	_, err = pool.Exec(ctx, `
		INSERT INTO employees_info (name, current_salary, average_expense, mobile_no) VALUES
			('Alice', 1000, 1500, '12345'),
			('Bob', 2000, 500, '9876543210'),
			('Eve', 3000, 100, NULL)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO employee_feedback (feedback) VALUES ('this is dumb stuff'), (NULL)`)
	require.NoError(t, err)

	t.Run("employees", func(t *testing.T) {
		repo := repository.NewEmployeeRepository(pool, nil)

		employees, err := repo.GetAllEmployees(ctx)

		require.NoError(t, err)
		assert.Equal(t, []models.Employee{
			{UID: 1, Name: "Alice", CurrentSalary: 1000, AverageExpense: 1500, MobileNo: "12345"},
			{UID: 2, Name: "Bob", CurrentSalary: 2000, AverageExpense: 500, MobileNo: "9876543210"},
			{UID: 3, Name: "Eve", CurrentSalary: 3000, AverageExpense: 100, MobileNo: ""},
		}, employees)
	})

	t.Run("feedback and slang", func(t *testing.T) {
		feedbackRepo := repository.NewFeedbackRepository(pool, nil)
		slangRepo := repository.NewSlangRepository(pool, nil)

		feedback, err := feedbackRepo.GetAllFeedback(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Feedback{{ID: 1, Text: "this is dumb stuff"}, {ID: 2, Text: ""}}, feedback)

		found, err := slangRepo.IsSlang(ctx, "dumb")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("tables", func(t *testing.T) {
		repo := repository.NewTableRepository(pool, nil)

		tables, err := repo.ListTables(ctx)
		require.NoError(t, err)
		assert.Subset(t, tables, []string{"employee_feedback", "employees_info", "new_employees", "slang_words"})

		table, err := repo.ReadTable(ctx, "employee_feedback")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "feedback"}, table.Columns)
		assert.Equal(t, [][]models.Cell{
			{{Value: "1"}, {Value: "this is dumb stuff"}},
			{{Value: "2"}, {Null: true}},
		}, table.Rows)
	})
}
