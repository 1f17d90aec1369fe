package its

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPanel(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*3)
	series := map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 6, 3, 100, 2, 10, 0),
		"Airport":  linearPoints(mondayStart, 6, 50, 1),
	}

	panel := mustBuildPanel(t, series, intervention)

	assert.Equal(t, []string{"Airport", "Downtown"}, panel.SegmentIDs())
	assert.Equal(t, 12, panel.NumRows())
	assert.True(t, panel.InterventionDate().Equal(intervention))
	assert.Nil(t, panel.Segment("Harbor"))

	rows := panel.Segment("Downtown")
	require.Len(t, rows, 6)
	for i, row := range rows {
		assert.Equal(t, i, row.WeekIndex)
		assert.Equal(t, "Downtown", row.Segment)
		assert.Equal(t, i >= 3, row.Post, "week %d", i)
		assert.Equal(t, row.Date.Month(), row.Month)
		assert.True(t, row.IsValid(), "week %d", i)
	}
	assert.Equal(t, 0, rows[2].WeeksSinceIntervention)
	assert.Equal(t, 0, rows[3].WeeksSinceIntervention)
	assert.Equal(t, 2, rows[5].WeeksSinceIntervention)

	all := panel.Rows()
	require.Len(t, all, 12)
	assert.Equal(t, "Airport", all[0].Segment)
	assert.Equal(t, "Downtown", all[6].Segment)
}

func TestBuildPanelSortsPointsByDate(t *testing.T) {
	points := linearPoints(mondayStart, 4, 10, 1)
	shuffled := []Point{points[2], points[0], points[3], points[1]}

	panel := mustBuildPanel(t, map[string][]Point{"Downtown": shuffled}, mondayStart.AddDate(0, 0, 7))

	rows := panel.Segment("Downtown")
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.True(t, row.Date.Equal(points[i].Date), "week %d", i)
		assert.Equal(t, points[i].Value, row.Outcome, "week %d", i)
		assert.Equal(t, i, row.WeekIndex)
	}
}

func TestBuildPanelConfigurationErrors(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7)

	t.Run("empty series", func(t *testing.T) {
		_, err := BuildPanel(map[string][]Point{}, intervention)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "series", cfgErr.Field)
		assert.Contains(t, err.Error(), "no segments to assemble")
	})

	t.Run("empty segment identifier", func(t *testing.T) {
		_, err := BuildPanel(map[string][]Point{"": linearPoints(mondayStart, 3, 10, 1)}, intervention)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "empty segment identifier")
	})
}

func TestBuildPanelRejectsBrokenSeries(t *testing.T) {
	base := linearPoints(mondayStart, 5, 100, 1)

	gapped := append([]Point{}, base[:2]...)
	gapped = append(gapped, base[3:]...)

	duplicated := append([]Point{}, base...)
	duplicated = append(duplicated, base[2])

	negative := append([]Point{}, base...)
	negative[4].Value = -1

	tests := []struct {
		name    string
		points  []Point
		message string
	}{
		{"missing week", gapped, "broken weekly spacing: expected 2020-01-20"},
		{"duplicated week", duplicated, "duplicated week"},
		{"negative outcome", negative, "negative outcome -1.00"},
		{"no observations", nil, "segment has no observations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPanel(map[string][]Point{"Downtown": tt.points}, mondayStart.AddDate(0, 0, 14))
			var integrityErr *DataIntegrityError
			require.ErrorAs(t, err, &integrityErr)
			assert.Equal(t, "Downtown", integrityErr.Segment)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestPanelWithoutSegment(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*2)
	panel := mustBuildPanel(t, map[string][]Point{
		"Airport":  linearPoints(mondayStart, 4, 50, 1),
		"Downtown": linearPoints(mondayStart, 4, 100, 2),
		"Harbor":   linearPoints(mondayStart, 4, 70, 1),
	}, intervention)

	reduced := panel.WithoutSegment("Downtown")
	assert.Equal(t, []string{"Airport", "Harbor"}, reduced.SegmentIDs())
	assert.Nil(t, reduced.Segment("Downtown"))
	assert.Equal(t, 8, reduced.NumRows())
	assert.True(t, reduced.InterventionDate().Equal(intervention))

	// The reduced panel owns its rows.
	reduced.Segment("Airport")[0].Outcome = -999
	assert.Equal(t, 50.0, panel.Segment("Airport")[0].Outcome)

	// Dropping an unknown segment copies the panel unchanged.
	copied := panel.WithoutSegment("Ferry")
	assert.Equal(t, panel.SegmentIDs(), copied.SegmentIDs())
	assert.Equal(t, panel.NumRows(), copied.NumRows())
}

func TestPanelCSVRoundTrip(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*2)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 5, 2, 100, 1.5, 20, 0),
		"Airport":  linearPoints(mondayStart, 5, 50.5, 1),
	}, intervention)

	path := filepath.Join(t.TempDir(), "panels", "panel.csv")
	require.NoError(t, panel.WriteCSV(path))

	loaded, err := LoadPanelCSV(path, intervention)
	require.NoError(t, err)
	require.Equal(t, panel.SegmentIDs(), loaded.SegmentIDs())
	for _, id := range panel.SegmentIDs() {
		want := panel.Segment(id)
		got := loaded.Segment(id)
		require.Len(t, got, len(want))
		for i := range want {
			assert.True(t, got[i].Date.Equal(want[i].Date), "%s week %d", id, i)
			assert.InDelta(t, want[i].Outcome, got[i].Outcome, 1e-9, "%s week %d", id, i)
			assert.Equal(t, want[i].Post, got[i].Post, "%s week %d", id, i)
			assert.Equal(t, want[i].WeekIndex, got[i].WeekIndex)
			assert.Equal(t, want[i].WeeksSinceIntervention, got[i].WeeksSinceIntervention)
		}
	}
}

func TestWriteCSVRejectsEmptyPanel(t *testing.T) {
	err := (&Panel{}).WriteCSV(filepath.Join(t.TempDir(), "panel.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows to save")
}

func TestLoadPanelCSVHeaderAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ridership.csv")
	content := "week,route,avg_ridership\n" +
		"2020/01/06,Downtown,100\n" +
		"2020/01/13,Downtown,101.5\n" +
		"2020/01/20,Downtown,103\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	panel, err := LoadPanelCSV(path, time.Date(2020, time.January, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	rows := panel.Segment("Downtown")
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Post)
	assert.True(t, rows[1].Post)
	assert.Equal(t, 101.5, rows[1].Outcome)
}

func TestLoadPanelCSVRejectsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	intervention := time.Date(2020, time.January, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing date column", "segment,outcome\nDowntown,100\n", "no date column"},
		{"missing segment column", "date,outcome\n2020-01-06,100\n", "no segment column"},
		{"missing outcome column", "date,segment\n2020-01-06,Downtown\n", "no outcome column"},
		{"header only", "date,segment,outcome\n", "contains no data rows"},
		{"unparseable date", "date,segment,outcome\nyesterday,Downtown,100\n", "parse date"},
		{"empty segment cell", "date,segment,outcome\n2020-01-06,,100\n", "empty segment"},
		{"unparseable outcome", "date,segment,outcome\n2020-01-06,Downtown,lots\n", "parse outcome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadPanelCSV(path, intervention)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPanelCSV(filepath.Join(dir, "absent.csv"), intervention)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open panel CSV")
	})
}

func TestParsePanelDate(t *testing.T) {
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-04", "2024/03/04", "03/04/2024"} {
		got, err := parsePanelDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), raw)
	}

	withTime, err := parsePanelDate("2024-03-04 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, 10, withTime.Hour())

	_, err = parsePanelDate("last monday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse date")
}
