package generic_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/safe-harbor-engine/generic"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestTimePoint_AddDays_CrossesYear(t *testing.T) {
	// GIVEN: A mid-December payment
	// WHEN: Adding 105 days
	// THEN: The result lands in late March of the next year

	paid := generic.NewTimePoint(2025, time.December, 15)
	assert.Equal(t, "2026-03-30", paid.AddDays(105).String())
}

func TestTimePoint_AddDays_LeapYear(t *testing.T) {
	tp := generic.NewTimePoint(2028, time.February, 28)
	assert.Equal(t, "2028-02-29", tp.AddDays(1).String())
	assert.Equal(t, "2028-03-01", tp.AddDays(2).String())
}

func TestTimePoint_ComparisonsAreInclusive(t *testing.T) {
	deadline := generic.NewTimePoint(2025, time.December, 31)
	sameDay := generic.TimePoint{Time: time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)}

	assert.True(t, sameDay.BeforeOrEqual(deadline))
	assert.True(t, sameDay.Equal(deadline))
	assert.False(t, deadline.AddDays(1).BeforeOrEqual(deadline))
	assert.True(t, deadline.AddDays(1).AfterOrEqual(deadline))
}

func TestParseDate(t *testing.T) {
	tp, err := generic.ParseDate(" 2025-06-01 ")
	require.NoError(t, err)
	assert.Equal(t, generic.NewTimePoint(2025, time.June, 1), tp)
	assert.Equal(t, "June 1, 2025", tp.Long())

	_, err = generic.ParseDate("06/01/2025")
	assert.True(t, errors.Is(err, generic.ErrInvalidDate))
}

func TestTimePoint_JSON(t *testing.T) {
	type wrapper struct {
		Date generic.TimePoint `json:"date"`
	}

	out, err := json.Marshal(wrapper{Date: generic.NewTimePoint(2026, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-07-04"}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-12-31"}`), &in))
	assert.Equal(t, generic.EndOfYear(2025), in.Date)

	err = json.Unmarshal([]byte(`{"date":"tomorrow"}`), &in)
	assert.True(t, errors.Is(err, generic.ErrInvalidDate))
}

func TestDaysBetween(t *testing.T) {
	from := generic.NewTimePoint(2025, time.December, 15)
	assert.Equal(t, 105, generic.DaysBetween(from, from.AddDays(105)))
}

// =============================================================================
// MONEY TESTS
// =============================================================================

func TestMoney_Ratio(t *testing.T) {
	pct, ok := generic.NewMoney(520_000).Ratio(generic.NewMoney(8_000_000))
	require.True(t, ok)
	assert.Equal(t, "6.50", pct.String())
}

func TestMoney_Ratio_ZeroTotalFailsClosed(t *testing.T) {
	_, ok := generic.NewMoney(100).Ratio(generic.NewMoney(0))
	assert.False(t, ok)

	_, ok = generic.NewMoney(100).Ratio(generic.NewMoney(-5))
	assert.False(t, ok)
}

func TestMoney_Percent(t *testing.T) {
	ld := generic.NewMoney(2_500_000).Percent(generic.NewPercent(5))
	assert.True(t, ld.Value.Equal(generic.NewMoney(125_000).Value))

	// 5% of $33.33 rounds to the cent
	assert.Equal(t, "1.67", generic.NewMoney(33.33).Percent(generic.NewPercent(5)).String())
}

func TestMoney_JSON(t *testing.T) {
	var m generic.Money
	require.NoError(t, json.Unmarshal([]byte(`2500000`), &m))
	assert.Equal(t, "2500000.00", m.String())

	err := json.Unmarshal([]byte(`"lots"`), &m)
	assert.True(t, errors.Is(err, generic.ErrInvalidCost))
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestFieldError_Unwraps(t *testing.T) {
	err := fmt.Errorf("create: %w", &generic.FieldError{Field: "capacity", Value: -1, Err: generic.ErrInvalidCapacity})

	assert.True(t, errors.Is(err, generic.ErrInvalidCapacity))
	assert.True(t, generic.IsClientError(err))
	assert.False(t, generic.IsNotFound(err))
	assert.Contains(t, err.Error(), "capacity")
}
