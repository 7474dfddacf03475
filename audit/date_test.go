package audit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-audit/audit"
)

// =============================================================================
// DAY-FIRST PARSING
// =============================================================================

func TestParseDate_DayFirst_AmbiguousSlashes(t *testing.T) {
	// GIVEN: An ambiguous slash date from a day-first locale
	// WHEN: Parsing "03/04/2024"
	// THEN: The result is 3 April, never March 4

	d, err := audit.ParseDate("03/04/2024")
	require.NoError(t, err)

	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.April, d.Month())
	assert.Equal(t, 3, d.Day())
}

func TestParseDate_AcceptedLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want audit.Date
	}{
		{"2024-04-03", audit.NewDate(2024, time.April, 3)},
		{"03/04/2024", audit.NewDate(2024, time.April, 3)},
		{"3/4/2024", audit.NewDate(2024, time.April, 3)},
		{"03-04-2024", audit.NewDate(2024, time.April, 3)},
		{"3.4.2024", audit.NewDate(2024, time.April, 3)},
		{"31/12/2023", audit.NewDate(2023, time.December, 31)},
	}

	for _, tc := range cases {
		d, err := audit.ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, d.Equal(tc.want), "input %q parsed to %s", tc.in, d)
	}
}

func TestParseDate_StrictFailures(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "2024-13-01", "32/01/2024"} {
		_, err := audit.ParseDate(in)
		assert.Error(t, err, "input %q should not parse", in)
	}
}

func TestParseDateLenient_CoercesToZero(t *testing.T) {
	// GIVEN: An unparseable date on the lenient path
	// WHEN: Parsing it
	// THEN: The zero Date comes back with ok=false, never a panic or error

	d, ok := audit.ParseDateLenient("garbage")
	assert.False(t, ok)
	assert.True(t, d.IsZero())

	d, ok = audit.ParseDateLenient("30/06/2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-30", d.String())
}

// =============================================================================
// DATE SEMANTICS
// =============================================================================

func TestDate_ZeroFormatsEmpty(t *testing.T) {
	var d audit.Date
	assert.Equal(t, "", d.String())
	assert.True(t, d.IsZero())
}

func TestDate_Comparisons(t *testing.T) {
	jan1 := audit.NewDate(2024, time.January, 1)
	jan2 := audit.NewDate(2024, time.January, 2)

	assert.True(t, jan1.Before(jan2))
	assert.True(t, jan2.After(jan1))
	assert.True(t, jan1.Equal(audit.NewDate(2024, time.January, 1)))
	assert.False(t, jan1.After(jan1))
}

func TestDaysBetween(t *testing.T) {
	start := audit.NewDate(2017, time.March, 1)
	end := audit.NewDate(2024, time.June, 30)

	assert.Equal(t, 2678, audit.DaysBetween(start, end))
	assert.Equal(t, -2678, audit.DaysBetween(end, start))
	assert.Equal(t, 1, audit.DaysBetween(start, start.AddDays(1)))
}

func TestMinMaxDate(t *testing.T) {
	a := audit.NewDate(2024, time.January, 1)
	b := audit.NewDate(2024, time.June, 30)

	assert.True(t, audit.MinDate(a, b).Equal(a))
	assert.True(t, audit.MaxDate(a, b).Equal(b))
}
