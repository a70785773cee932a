package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.999999"
)

// ListTables returns the names of all base tables in the public schema.
func (r *Repository) ListTables(ctx context.Context) ([]string, error) {
	defer r.observe("list_tables", time.Now())

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table names: %w", err)
	}

	return tables, nil
}

// ReadTable returns the column names and all rows of the given table rendered as text.
// The table name is quoted as an identifier; callers must only pass names returned by ListTables.
func (r *Repository) ReadTable(ctx context.Context, table string) (models.Table, error) {
	defer r.observe("read_table", time.Now())

	query := "SELECT * FROM " + pgx.Identifier{table}.Sanitize()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return models.Table{}, fmt.Errorf("failed to query table '%s': %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := models.Table{
		Name:    table,
		Columns: make([]string, 0, len(fields)),
		Rows:    make([][]models.Cell, 0),
	}
	for _, field := range fields {
		result.Columns = append(result.Columns, field.Name)
	}

	for rows.Next() {
		values, valErr := rows.Values()
		if valErr != nil {
			return models.Table{}, fmt.Errorf("failed to read row of table '%s': %w", table, valErr)
		}

		row := make([]models.Cell, 0, len(values))
		for i, value := range values {
			row = append(row, FormatColumn(fields[i].DataTypeOID, value))
		}
		result.Rows = append(result.Rows, row)
	}

	if err = rows.Err(); err != nil {
		return models.Table{}, fmt.Errorf("failed to read rows of table '%s': %w", table, err)
	}

	return result, nil
}

// FormatColumn renders a value decoded by pgx for a column of type oid. Dates and
// timestamps without time zone keep the PostgreSQL text form, arrays are written as
// array literals and json columns as compact JSON. Everything else goes through FormatValue.
func FormatColumn(oid uint32, value any) models.Cell {
	if value == nil {
		return models.Cell{Null: true}
	}

	switch oid {
	case pgtype.JSONOID, pgtype.JSONBOID:
		return jsonCell(value)
	}

	if elems, ok := value.([]any); ok {
		return models.Cell{Value: arrayLiteral(oid, elems)}
	}

	switch oid {
	case pgtype.JSONArrayOID, pgtype.JSONBArrayOID:
		return jsonCell(value)
	}

	if moment, ok := value.(time.Time); ok {
		switch oid {
		case pgtype.DateOID, pgtype.DateArrayOID:
			return models.Cell{Value: moment.Format(dateLayout)}
		case pgtype.TimestampOID, pgtype.TimestampArrayOID:
			return models.Cell{Value: moment.Format(timestampLayout)}
		}
	}

	return FormatValue(value)
}

// arrayLiteral writes elems as a PostgreSQL array literal such as {1,NULL,"a b"}.
// pgx hands multi-dimensional arrays over flattened, so they come out one-dimensional.
func arrayLiteral(oid uint32, elems []any) string {
	var out strings.Builder
	out.WriteByte('{')
	for i, elem := range elems {
		if i > 0 {
			out.WriteByte(',')
		}
		if nested, ok := elem.([]any); ok && oid != pgtype.JSONArrayOID && oid != pgtype.JSONBArrayOID {
			out.WriteString(arrayLiteral(oid, nested))
			continue
		}
		cell := FormatColumn(oid, elem)
		if cell.Null {
			out.WriteString("NULL")
			continue
		}
		out.WriteString(quoteArrayElement(cell.Value))
	}
	out.WriteByte('}')

	return out.String()
}

func quoteArrayElement(elem string) string {
	if elem != "" && !strings.EqualFold(elem, "NULL") && !strings.ContainsAny(elem, "{},\"\\ \t\n\r\v\f") {
		return elem
	}

	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(elem) + `"`
}

func jsonCell(value any) models.Cell {
	encoded, err := json.Marshal(value)
	if err != nil {
		return models.Cell{Value: fmt.Sprint(value)}
	}

	return models.Cell{Value: string(encoded)}
}

// FormatValue renders a value decoded by pgx as a text cell.
func FormatValue(value any) models.Cell {
	switch val := value.(type) {
	case nil:
		return models.Cell{Null: true}
	case string:
		return models.Cell{Value: val}
	case []byte:
		return models.Cell{Value: string(val)}
	case time.Time:
		return models.Cell{Value: val.Format(time.RFC3339Nano)}
	case [16]byte:
		return models.Cell{Value: uuid.UUID(val).String()}
	case map[string]any, []any:
		return jsonCell(val)
	case driver.Valuer:
		// pgtype values (numeric, interval, ...) know their own text form
		inner, err := val.Value()
		if err != nil {
			return models.Cell{Value: fmt.Sprint(val)}
		}
		return FormatValue(inner)
	default:
		return models.Cell{Value: fmt.Sprint(val)}
	}
}
