package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/lib/tabular"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
)

const runType = "export_tables"

type Exporter struct {
	log       *slog.Logger
	repo      repository.TableRepoIface
	outputDir string
	metrics   *metrics.Metrics
}

func NewExporter(log *slog.Logger, repo repository.TableRepoIface, outputDir string, metrics *metrics.Metrics) *Exporter {
	return &Exporter{log: log, repo: repo, outputDir: outputDir, metrics: metrics}
}

func (e *Exporter) initLogger(opn string) *slog.Logger {
	return e.log.With(
		slog.String("op", opn),
		slog.String("division", "export"),
	)
}

// ExportAll writes every table enumerated by the store to its own file and returns
// the file path per table. The first failing table aborts the whole batch.
func (e *Exporter) ExportAll(ctx context.Context) (files map[string]string, err error) {
	const opn = "Export.ExportAll"
	log := e.initLogger(opn)

	defer func() {
		e.metrics.ObserveRun(runType, err, float64(time.Now().Unix()))
	}()

	tables, err := e.repo.ListTables(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tables", sl.Err(err))
		return nil, fmt.Errorf("%w: failed to list tables: %w", models.ErrStore, err)
	}

	allowed := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		allowed[table] = struct{}{}
	}

	files = make(map[string]string, len(tables))
	for _, table := range tables {
		path, exportErr := e.exportTable(ctx, allowed, table)
		if exportErr != nil {
			log.ErrorContext(ctx, "Failed to export table", "table", table, sl.Err(exportErr))
			return nil, exportErr
		}

		files[table] = path
		e.metrics.TablesExported.Inc()
		log.DebugContext(ctx, "Table exported", "table", table, "path", path)
	}

	log.InfoContext(ctx, "Tables exported", "count", len(files), "dir", e.outputDir)

	return files, nil
}

// ExportTable writes a single table to its file. The name must be one the store enumerates.
func (e *Exporter) ExportTable(ctx context.Context, table string) (path string, err error) {
	const opn = "Export.ExportTable"
	log := e.initLogger(opn).With(slog.String("table", table))

	defer func() {
		e.metrics.ObserveRun(runType, err, float64(time.Now().Unix()))
	}()

	tables, err := e.repo.ListTables(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tables", sl.Err(err))
		return "", fmt.Errorf("%w: failed to list tables: %w", models.ErrStore, err)
	}

	allowed := make(map[string]struct{}, len(tables))
	for _, name := range tables {
		allowed[name] = struct{}{}
	}

	path, err = e.exportTable(ctx, allowed, table)
	if err != nil {
		log.WarnContext(ctx, "Failed to export table", sl.Err(err))
		return "", err
	}
	e.metrics.TablesExported.Inc()

	return path, nil
}

// exportTable dumps one table. Only names present in allowed are ever queried.
func (e *Exporter) exportTable(ctx context.Context, allowed map[string]struct{}, table string) (string, error) {
	if _, ok := allowed[table]; !ok {
		return "", fmt.Errorf("%w: %q", models.ErrTableNotAllowed, table)
	}

	data, err := e.repo.ReadTable(ctx, table)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read table '%s': %w", models.ErrStore, table, err)
	}

	path := filepath.Join(e.outputDir, FileName(table))
	if err = tabular.WriteFile(path, data.Columns, tabular.EncodeRows(data.Rows)); err != nil {
		return "", fmt.Errorf("%w: failed to write table '%s': %w", models.ErrWrite, table, err)
	}

	return path, nil
}

// FileName returns the file name used for a table, with path separators replaced.
func FileName(table string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(table)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}

	return name + ".csv"
}
