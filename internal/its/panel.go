package its

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const weekDays = 7

// BuildPanel assembles per-segment weekly sequences into a single panel.
// Each segment receives a zero-based week index starting at its first date,
// a post-intervention flag, and a weeks-since-intervention counter. The
// weekly index must be gapless: any missing or duplicated week fails the
// build with a DataIntegrityError.
func BuildPanel(series map[string][]Point, interventionDate time.Time) (*Panel, error) {
	if len(series) == 0 {
		return nil, &ConfigurationError{Field: "series", Message: "no segments to assemble"}
	}

	panel := &Panel{
		interventionDate: interventionDate,
		segments:         make(map[string][]Observation, len(series)),
	}

	for id := range series {
		if id == "" {
			return nil, &ConfigurationError{Field: "series", Message: "empty segment identifier"}
		}
		panel.segmentIDs = append(panel.segmentIDs, id)
	}
	sort.Strings(panel.segmentIDs)

	for _, id := range panel.segmentIDs {
		points := make([]Point, len(series[id]))
		copy(points, series[id])
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})

		rows, err := buildSegmentRows(id, points, interventionDate)
		if err != nil {
			return nil, err
		}
		panel.segments[id] = rows
	}

	return panel, nil
}

// buildSegmentRows derives the per-row fields for one segment and enforces
// the gapless weekly-spacing invariant.
func buildSegmentRows(id string, points []Point, interventionDate time.Time) ([]Observation, error) {
	if len(points) == 0 {
		return nil, &DataIntegrityError{Segment: id, Message: "segment has no observations"}
	}

	rows := make([]Observation, 0, len(points))
	for i, pt := range points {
		if i > 0 {
			gap := pt.Date.Sub(points[i-1].Date)
			switch {
			case gap == 0:
				return nil, &DataIntegrityError{Segment: id, Date: pt.Date, Message: "duplicated week"}
			case gap != weekDays*24*time.Hour:
				return nil, &DataIntegrityError{
					Segment: id,
					Date:    pt.Date,
					Message: fmt.Sprintf("broken weekly spacing: expected %s", points[i-1].Date.AddDate(0, 0, weekDays).Format("2006-01-02")),
				}
			}
		}
		if pt.Value < 0 {
			return nil, &DataIntegrityError{Segment: id, Date: pt.Date, Message: fmt.Sprintf("negative outcome %.2f", pt.Value)}
		}

		days := int(pt.Date.Sub(interventionDate).Hours() / 24)
		post := days >= 0
		weeksSince := 0
		if post {
			weeksSince = days / weekDays
		}

		rows = append(rows, Observation{
			Date:                   pt.Date,
			Segment:                id,
			Outcome:                pt.Value,
			WeekIndex:              i,
			Post:                   post,
			WeeksSinceIntervention: weeksSince,
			Month:                  pt.Date.Month(),
		})
	}

	return rows, nil
}

// LoadPanelCSV reads a long-format weekly panel from a CSV file and builds
// a panel around the given intervention date. The file needs date, segment,
// and outcome columns; several common header spellings are recognized.
// Derived fields are always recomputed from the dates, so files produced by
// other tools only have to carry the three core columns.
func LoadPanelCSV(path string, interventionDate time.Time) (*Panel, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read panel CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("panel CSV %s contains no data rows", filepath.Base(path))
	}

	dateIdx, segmentIdx, outcomeIdx, err := resolvePanelColumns(records[0])
	if err != nil {
		return nil, fmt.Errorf("panel CSV %s: %w", filepath.Base(path), err)
	}

	series := make(map[string][]Point)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) <= dateIdx || len(record) <= segmentIdx || len(record) <= outcomeIdx {
			return nil, fmt.Errorf("short record (line %d)", line)
		}

		date, err := parsePanelDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("parse date (line %d): %w", line, err)
		}
		segment := strings.TrimSpace(record[segmentIdx])
		if segment == "" {
			return nil, fmt.Errorf("empty segment (line %d)", line)
		}
		outcome, err := strconv.ParseFloat(strings.TrimSpace(record[outcomeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse outcome (line %d): %w", line, err)
		}

		series[segment] = append(series[segment], Point{Date: date, Value: outcome})
	}

	return BuildPanel(series, interventionDate)
}

// resolvePanelColumns maps header names to the three required columns.
func resolvePanelColumns(header []string) (dateIdx, segmentIdx, outcomeIdx int, err error) {
	dateIdx, segmentIdx, outcomeIdx = -1, -1, -1

	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date", "week", "week_start":
			dateIdx = i
		case "segment", "route", "route_type":
			segmentIdx = i
		case "outcome", "ridership", "avg_ridership", "value":
			outcomeIdx = i
		}
	}

	switch {
	case dateIdx < 0:
		return 0, 0, 0, fmt.Errorf("no date column in header %v", header)
	case segmentIdx < 0:
		return 0, 0, 0, fmt.Errorf("no segment column in header %v", header)
	case outcomeIdx < 0:
		return 0, 0, 0, fmt.Errorf("no outcome column in header %v", header)
	}
	return dateIdx, segmentIdx, outcomeIdx, nil
}

// parsePanelDate attempts to parse date strings in multiple formats
func parsePanelDate(dateStr string) (time.Time, error) {
	dateFormats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02 15:04:05",
	}

	for _, format := range dateFormats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// WriteCSV writes the panel in long format with derived columns included,
// sorted by segment then date.
func (p *Panel) WriteCSV(path string) error {
	if p.NumRows() == 0 {
		return fmt.Errorf("no rows to save")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create panel CSV: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "segment", "outcome", "post", "week_index", "weeks_since_intervention"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, row := range p.Rows() {
		post := "0"
		if row.Post {
			post = "1"
		}
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Segment,
			strconv.FormatFloat(row.Outcome, 'f', 1, 64),
			post,
			strconv.Itoa(row.WeekIndex),
			strconv.Itoa(row.WeeksSinceIntervention),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", row.Segment, err)
		}
	}

	return writer.Error()
}
