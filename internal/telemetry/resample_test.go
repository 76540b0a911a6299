package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHourly(t *testing.T) {
	src := Table{
		Columns: []string{"00:00", "00:15", "00:30", "00:45", "01:00", "01:15"},
		Rows: []Record{
			row("East", "M1", "S1", "2024-03-15", 0,
				Num(100), Num(90), Num(80), Num(70), Num(60), Num(40)),
		},
	}

	out := ToHourly(src)
	require.Equal(t, []string{"00", "01"}, out.Columns, "hours with no source columns are omitted")
	require.Len(t, out.Rows, 1)
	assert.Equal(t, Num(85), out.Rows[0].Values[0])
	assert.Equal(t, Num(50), out.Rows[0].Values[1], "partial hour averages only its present slots")
}

func TestToHourlyMissingSlots(t *testing.T) {
	src := Table{
		Columns: []string{"00:00", "00:15", "00:30", "00:45"},
		Rows: []Record{
			row("East", "M1", "S1", "2024-03-15", 0, Num(100), Missing, Num(50), Missing),
			row("East", "M1", "S2", "2024-03-15", 0, Missing, Missing, Missing, Missing),
		},
	}

	out := ToHourly(src)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, Num(75), out.Rows[0].Values[0], "missing slots drop out of the denominator")
	assert.False(t, out.Rows[1].Values[0].Valid, "an hour with all slots missing stays missing")
}

func TestToHourlyPreservesIdentity(t *testing.T) {
	src := Table{
		Columns: []string{"00:00"},
		Rows:    []Record{row("East", "M1", "S1", "2024-03-15", 3, Num(100))},
	}
	out := ToHourly(src)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "East", out.Rows[0].Region)
	assert.Equal(t, "S1", out.Rows[0].Site)
	assert.Equal(t, 3, out.Rows[0].Risk)
	assert.True(t, out.Rows[0].DateValid)
}

func TestToDailyPairDenseGrid(t *testing.T) {
	arrival := Table{
		Columns: []string{"00:00", "00:15"},
		Rows: []Record{
			row("East", "M1", "S1", "2024-03-15", 1, Num(100), Num(50)),
			row("East", "M1", "S1", "2024-03-13", 0, Num(80), Num(60)),
		},
	}
	delay := Table{
		Columns: []string{"00:00", "00:15"},
		Rows: []Record{
			// S2 appears only in the delay table but still joins the grid.
			row("East", "M2", "S2", "2024-03-14", 0, Num(5), Num(15)),
		},
	}

	dArr, dDel := ToDailyPair(arrival, delay)

	require.True(t, dArr.IsDaily())
	require.True(t, dDel.IsDaily())

	// Two site triples, five days each.
	require.Len(t, dArr.Rows, 2*DailyWindowDays)
	require.Len(t, dDel.Rows, 2*DailyWindowDays)

	// Window is anchored at the max date across both tables.
	assert.Equal(t, day("2024-03-11"), dArr.Rows[0].Day())
	assert.Equal(t, day("2024-03-15"), dArr.Rows[DailyWindowDays-1].Day())

	byKey := func(tbl Table, site, d string) Record {
		for _, r := range tbl.Rows {
			if r.Site == site && r.Day().Equal(day(d)) {
				return r
			}
		}
		t.Fatalf("row %s/%s not found", site, d)
		return Record{}
	}

	assert.Equal(t, Num(75), byKey(dArr, "S1", "2024-03-15").Values[0])
	assert.Equal(t, 1, byKey(dArr, "S1", "2024-03-15").Risk)
	assert.Equal(t, Num(70), byKey(dArr, "S1", "2024-03-13").Values[0])

	// Grid gaps stay missing, never zero.
	gap := byKey(dArr, "S1", "2024-03-14")
	assert.False(t, gap.Values[0].Valid)
	assert.Equal(t, 0, gap.Risk)

	// S2 has no arrival rows at all: five missing cells.
	for i := 0; i < DailyWindowDays; i++ {
		d := day("2024-03-11").AddDate(0, 0, i)
		assert.False(t, byKey(dArr, "S2", d.Format(DateLayout)).Values[0].Valid)
	}
	assert.Equal(t, Num(10), byKey(dDel, "S2", "2024-03-14").Values[0])
}

func TestToDailyPairDuplicateRowsAveraged(t *testing.T) {
	arrival := Table{
		Columns: []string{"00:00"},
		Rows: []Record{
			row("East", "M1", "S1", "2024-03-15", 1, Num(100)),
			row("East", "M1", "S1", "2024-03-15", 2, Num(50)),
		},
	}
	dArr, _ := ToDailyPair(arrival, Table{Columns: arrival.Columns})

	var found Record
	for _, r := range dArr.Rows {
		if r.Day().Equal(day("2024-03-15")) {
			found = r
		}
	}
	assert.Equal(t, Num(75), found.Values[0], "duplicate day rows average their row means")
	assert.Equal(t, 3, found.Risk, "risk accumulates over duplicate rows")
}

func TestToDailyPairNoDates(t *testing.T) {
	arrival := Table{
		Columns: []string{"00:00"},
		Rows:    []Record{row("East", "M1", "S1", "", 0, Num(100))},
	}
	dArr, dDel := ToDailyPair(arrival, Table{Columns: arrival.Columns})
	assert.True(t, dArr.Empty())
	assert.True(t, dDel.Empty())
	assert.Equal(t, []string{ColDailyAvg}, dArr.Columns)
	assert.Equal(t, []string{ColDailyAvg}, dDel.Columns)
}

func TestResampleNativePassThrough(t *testing.T) {
	arrival := Table{Columns: []string{"00:00"}, Rows: []Record{row("East", "M1", "S1", "2024-03-15", 0, Num(1))}}
	delay := Table{Columns: []string{"00:00"}, Rows: []Record{row("East", "M1", "S1", "2024-03-15", 0, Num(2))}}

	a, d := Resample(arrival, delay, Native)
	assert.Equal(t, arrival, a)
	assert.Equal(t, delay, d)
}

// A fully populated row must report the same overall mean whether it is
// averaged directly, through hourly buckets of equal width, or per day.
func TestResampleConservation(t *testing.T) {
	labels := IntervalLabels()
	values := make([]Value, len(labels))
	var sum float64
	for i := range values {
		f := float64(i % 7)
		values[i] = Num(f)
		sum += f
	}
	direct := sum / float64(len(values))

	src := Table{Columns: labels, Rows: []Record{
		{Region: "East", Market: "M1", Site: "S1", Date: day("2024-03-15"), DateValid: true, Values: values},
	}}

	hourly := ToHourly(src)
	require.Len(t, hourly.Columns, 24)
	hourlyMean := Mean(hourly.Rows[0].Values)
	require.True(t, hourlyMean.Valid)
	assert.InDelta(t, direct, hourlyMean.Float64, 1e-9)

	daily, _ := ToDailyPair(src, Table{Columns: labels})
	var dayRow Record
	for _, r := range daily.Rows {
		if r.Values[0].Valid {
			dayRow = r
		}
	}
	assert.InDelta(t, direct, dayRow.Values[0].Float64, 1e-9)
}
