package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"training-log/internal/clock"
)

// barWidth is how many blocks the widest day bar gets in text charts.
const barWidth = 12

// ReportService renders chart data into the HTML messages the bot sends,
// both on demand and from the scheduled push.
type ReportService struct {
	charts *ChartService
}

func NewReportService(charts *ChartService) *ReportService {
	return &ReportService{charts: charts}
}

// PeriodSummary builds the text chart for one displayed period: a bar per
// day scaled to the busiest day, plus the period totals.
func (s *ReportService) PeriodSummary(ctx context.Context, period PeriodType, offset int) (string, error) {
	data, err := s.charts.BuildChartData(ctx, period, offset)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", periodTitle(data)))
	builder.WriteString(fmt.Sprintf("🗓 %s — %s\n\n", data.StartDate, data.EndDate))

	for _, day := range data.Days {
		builder.WriteString(fmt.Sprintf("<code>%s %s</code>", day.Label, bar(day.Total, data.MaxTotal)))
		if day.Total > 0 {
			builder.WriteString(fmt.Sprintf(" %d", day.Total))
		}
		builder.WriteByte('\n')
	}

	builder.WriteString(fmt.Sprintf("\n• <b>Total load:</b> %d\n", data.TotalLoad))
	builder.WriteString(fmt.Sprintf("• <b>Records:</b> %d", data.TotalRecords))

	if data.TotalRecords > 0 {
		builder.WriteString("\n\n<b>By exercise</b>\n")
		builder.WriteString(s.exerciseBreakdown(data))
	}

	return builder.String(), nil
}

// WeeklyReport is the message the scheduler pushes: the current week's
// summary.
func (s *ReportService) WeeklyReport(ctx context.Context) (string, error) {
	return s.PeriodSummary(ctx, PeriodWeek, 0)
}

// exerciseBreakdown sums segment loads per exercise across the period,
// keeping the segment order of the chart.
func (s *ReportService) exerciseBreakdown(data *ChartData) string {
	totals := make(map[string]int)
	var order []string
	for _, day := range data.Days {
		for _, segment := range day.Segments {
			if _, seen := totals[segment.Name]; !seen {
				order = append(order, segment.Name)
			}
			totals[segment.Name] += segment.Value
		}
	}

	var builder strings.Builder
	for _, name := range order {
		builder.WriteString(fmt.Sprintf("• %s: %d\n", html.EscapeString(name), totals[name]))
	}
	return strings.TrimRight(builder.String(), "\n")
}

func periodTitle(data *ChartData) string {
	switch data.Period {
	case PeriodMonth:
		if first, err := time.Parse(clock.DateFormat, data.StartDate); err == nil {
			return first.Format("January 2006")
		}
		return "Month"
	default:
		if data.Offset == 0 {
			return "This week"
		}
		if data.Offset == -1 {
			return "Last week"
		}
		return fmt.Sprintf("%d weeks ago", -data.Offset)
	}
}

// bar renders a day total as a fixed-scale block bar. A zero max means an
// empty period, every bar stays empty instead of dividing by zero.
func bar(total, max int) string {
	if max <= 0 || total <= 0 {
		return strings.Repeat("░", barWidth)
	}
	filled := total * barWidth / max
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
