// Package tabular reads and writes the comma-separated files produced by the service.
//
// Every file has one header row followed by one row per record. SQL NULL is
// written as NullToken. In non-NULL values a backslash is doubled and a carriage
// return is written as `\r`, since csv readers fold CRLF into LF. A row made of
// a single empty value is written as EmptyToken, since csv readers skip blank
// lines. NULL, the empty string and a literal `\N` all survive a write/read
// round-trip.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/themis/internal/models"
)

const (
	// NullToken marks a SQL NULL cell.
	NullToken = `\N`
	// EmptyToken marks the empty value of a single-column row.
	EmptyToken = `\E`
)

const filePerm = 0o644

var cellEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`)

// EncodeCell renders a cell as a field value.
func EncodeCell(cell models.Cell) string {
	if cell.Null {
		return NullToken
	}

	return cellEscaper.Replace(cell.Value)
}

// DecodeCell reverses EncodeCell. An unknown escape is kept as written.
func DecodeCell(field string) models.Cell {
	switch field {
	case NullToken:
		return models.Cell{Null: true}
	case EmptyToken:
		return models.Cell{}
	}
	if !strings.Contains(field, `\`) {
		return models.Cell{Value: field}
	}

	var out strings.Builder
	out.Grow(len(field))
	for i := 0; i < len(field); i++ {
		if field[i] != '\\' || i+1 == len(field) {
			out.WriteByte(field[i])
			continue
		}
		switch field[i+1] {
		case '\\':
			out.WriteByte('\\')
			i++
		case 'r':
			out.WriteByte('\r')
			i++
		default:
			out.WriteByte(field[i])
		}
	}

	return models.Cell{Value: out.String()}
}

// EncodeRows renders every cell of rows with EncodeCell.
func EncodeRows(rows [][]models.Cell) [][]string {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, len(row))
		for _, cell := range row {
			record = append(record, EncodeCell(cell))
		}
		if len(record) == 1 && record[0] == "" {
			record[0] = EmptyToken
		}
		records = append(records, record)
	}

	return records
}

// WriteFile writes header and records to path. The file is written to a temporary
// sibling first and renamed into place, so readers never see a partial file.
func WriteFile(path string, header []string, records [][]string) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	writer := csv.NewWriter(tmp)
	if err = writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err = writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	if err = tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// ReadFile parses a file written by WriteFile and returns its header and records.
func ReadFile(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("file has no header row: " + path)
	}

	return records[0], records[1:], nil
}
