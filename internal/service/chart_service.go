package service

import (
	"context"
	"fmt"
	"time"

	"training-log/internal/clock"
	"training-log/internal/errs"
	"training-log/internal/model"
	"training-log/internal/repository"
)

// PeriodType selects the chart span.
type PeriodType int

const (
	// PeriodWeek spans Monday..Sunday of the week containing today.
	PeriodWeek PeriodType = iota
	// PeriodMonth spans the full calendar month containing today.
	PeriodMonth
)

// FallbackColor is used for segments whose exercise name no longer resolves
// to any catalog entry.
const FallbackColor = "#cbd5e1"

// ChartSegment is one exercise's share of a day bar.
type ChartSegment struct {
	Name  string
	Color string
	Value int
}

// ChartDay is one bucket of the x-axis. Days without records are present
// with a zero total.
type ChartDay struct {
	Date     string // YYYY-MM-DD
	Label    string // MM/dd
	Total    int
	Segments []ChartSegment
}

// ChartData is everything the chart renderer needs: the fixed day axis,
// the bar scale and the period totals.
type ChartData struct {
	Period       PeriodType
	Offset       int
	StartDate    string
	EndDate      string
	Days         []ChartDay
	MaxTotal     int // largest day total, 0 when the range is empty
	TotalLoad    int // summed over the raw records, not the buckets
	TotalRecords int
}

// ChartService aggregates raw records into the per-day stacked series and
// the summary totals for one displayed period.
type ChartService struct {
	store *repository.Store
	clock clock.Clock
}

func NewChartService(store *repository.Store, clk clock.Clock) *ChartService {
	return &ChartService{store: store, clock: clk}
}

// Load is the derived volume of one record: count * sets * (weight or 1),
// truncated to an integer.
func Load(record model.TrainingRecord) int {
	weight := 1.0
	if record.Weight != nil {
		weight = *record.Weight
	}
	return int(float64(record.Count*record.Sets) * weight)
}

// BuildChartData aggregates the records of the selected period. Offsets
// shift the period into the past; positive offsets clamp to the current
// one, there are no future periods.
func (s *ChartService) BuildChartData(ctx context.Context, period PeriodType, offset int) (*ChartData, error) {
	if offset > 0 {
		offset = 0
	}

	start, end, err := s.periodRange(period, offset)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Records.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Full catalog, inactive included: records of a deleted exercise must
	// keep charting with its last known color.
	exercises, err := s.store.Exercises.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]string, len(exercises))
	nameOrder := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		colors[exercise.Name] = exercise.Color
		nameOrder = append(nameOrder, exercise.Name)
	}
	// Names that fell out of the catalog entirely join the segment order at
	// first sight, keeping it stable across renders.
	for _, record := range records {
		if _, known := colors[record.ExerciseName]; !known {
			colors[record.ExerciseName] = FallbackColor
			nameOrder = append(nameOrder, record.ExerciseName)
		}
	}

	byDate := make(map[string][]model.TrainingRecord)
	for _, record := range records {
		byDate[record.Date] = append(byDate[record.Date], record)
	}

	data := &ChartData{
		Period:       period,
		Offset:       offset,
		StartDate:    start,
		EndDate:      end,
		TotalRecords: len(records),
	}
	for _, record := range records {
		data.TotalLoad += Load(record)
	}

	startDay, _ := time.Parse(clock.DateFormat, start)
	endDay, _ := time.Parse(clock.DateFormat, end)
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		date := day.Format(clock.DateFormat)

		loads := make(map[string]int)
		for _, record := range byDate[date] {
			loads[record.ExerciseName] += Load(record)
		}

		var segments []ChartSegment
		total := 0
		for _, name := range nameOrder {
			value := loads[name]
			if value <= 0 {
				continue
			}
			segments = append(segments, ChartSegment{Name: name, Color: colors[name], Value: value})
			total += value
		}

		if total > data.MaxTotal {
			data.MaxTotal = total
		}
		data.Days = append(data.Days, ChartDay{
			Date:     date,
			Label:    day.Format("01/02"),
			Total:    total,
			Segments: segments,
		})
	}

	return data, nil
}

// periodRange resolves the period specifier into an inclusive date range
// around today.
func (s *ChartService) periodRange(period PeriodType, offset int) (string, string, error) {
	today, err := time.Parse(clock.DateFormat, s.clock.Today())
	if err != nil {
		return "", "", fmt.Errorf("today %q: %w", s.clock.Today(), errs.ErrValidation)
	}

	switch period {
	case PeriodWeek:
		// Monday of the ISO week containing today, shifted whole weeks.
		daysSinceMonday := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -daysSinceMonday+offset*7)
		sunday := monday.AddDate(0, 0, 6)
		return monday.Format(clock.DateFormat), sunday.Format(clock.DateFormat), nil
	case PeriodMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, offset, 0)
		last := first.AddDate(0, 1, -1)
		return first.Format(clock.DateFormat), last.Format(clock.DateFormat), nil
	default:
		return "", "", fmt.Errorf("period %d: %w", period, errs.ErrValidation)
	}
}
