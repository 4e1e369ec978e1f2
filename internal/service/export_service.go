package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"training-log/internal/clock"
	"training-log/internal/repository"
)

// csvTimestampFormat is how created/updated timestamps appear in the
// export, friendlier to spreadsheets than the stored ISO form.
const csvTimestampFormat = "2006-01-02 15:04:05"

var csvHeader = []string{"date", "exercise_name", "count", "sets", "weight", "created_at", "updated_at"}

// ExportService renders the full record history as a CSV document.
type ExportService struct {
	store *repository.Store
	clock clock.Clock
}

func NewExportService(store *repository.Store, clk clock.Clock) *ExportService {
	return &ExportService{store: store, clock: clk}
}

// BuildCSV emits the history in GetAll order, one row per record, prefixed
// with a UTF-8 BOM so spreadsheet apps pick up the encoding.
func (s *ExportService) BuildCSV(ctx context.Context) ([]byte, error) {
	records, err := s.store.Records.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("\uFEFF")
	builder.WriteString(strings.Join(csvHeader, ","))
	builder.WriteByte('\n')

	for _, record := range records {
		weight := ""
		if record.Weight != nil {
			weight = strconv.FormatFloat(*record.Weight, 'f', -1, 64)
		}
		row := []string{
			escapeCSV(record.Date),
			escapeCSV(record.ExerciseName),
			escapeCSV(strconv.Itoa(record.Count)),
			escapeCSV(strconv.Itoa(record.Sets)),
			escapeCSV(weight),
			escapeCSV(formatCSVTimestamp(record.CreatedAt)),
			escapeCSV(formatCSVTimestamp(record.UpdatedAt)),
		}
		builder.WriteString(strings.Join(row, ","))
		builder.WriteByte('\n')
	}

	return []byte(builder.String()), nil
}

// FileName returns the dated export file name, e.g.
// traininglog_export_20240603.csv.
func (s *ExportService) FileName() string {
	day := strings.ReplaceAll(s.clock.Today(), "-", "")
	return fmt.Sprintf("traininglog_export_%s.csv", day)
}

// escapeCSV quotes a field only when it contains a comma, a quote or a
// newline, doubling any inner quotes.
func escapeCSV(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
}

// formatCSVTimestamp reformats a stored ISO timestamp; anything that fails
// to parse passes through untouched.
func formatCSVTimestamp(iso string) string {
	parsed, err := time.Parse(clock.ISOFormat, iso)
	if err != nil {
		return iso
	}
	return parsed.Format(csvTimestampFormat)
}
