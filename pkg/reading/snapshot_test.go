package reading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	payload := `{
  "meter_time": "2024-01-01T00:00:00",
  "gas_last_measurement": "2024-01-01T00:00:05",
  "instantaneous_active_power_draw_l1": 0.512,
  "total_usage_night": 100.0,
  "total_usage_day": 50.1,
  "total_energy_delivered_night": 10,
  "total_energy_delivered_day": 0,
  "gas_usage_total": 1234.567,
  "p1_firmware": "5.0"
}`
	s, err := Parse([]byte(payload))
	require.NoError(t, err)

	require.NotNil(t, s.MeterTime)
	assert.Equal(t, "2024-01-01T00:00:00", *s.MeterTime)
	require.NotNil(t, s.GasTime)
	assert.Equal(t, "2024-01-01T00:00:05", *s.GasTime)

	require.NotNil(t, s.PowerDraw)
	assert.Equal(t, int64(512), s.PowerDraw.Milli())
	assert.Nil(t, s.PowerDelivery)

	assert.Equal(t, 100.0, s.UsageNight.Float64())
	assert.Equal(t, 50.1, s.UsageDay.Float64())
	assert.Equal(t, 10.0, s.DeliveredNight.Float64())

	// zero is a reading, not an absence
	require.NotNil(t, s.DeliveredDay)
	assert.False(t, s.DeliveredDay.Positive())
	assert.Equal(t, "1234.567", s.GasUsage.String())
}

func TestParseEmptyObject(t *testing.T) {
	s, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, s.MeterTime)
	assert.Nil(t, s.UsageNight)
	assert.Nil(t, s.GasUsage)
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "garbage", payload: "not json"},
		{name: "truncated object", payload: `{"total_usage_day": 1`},
		{name: "array", payload: `[1, 2, 3]`},
		{name: "number", payload: `42`},
		{name: "null", payload: `null`},
		{name: "string reading", payload: `{"total_usage_day": "50.1"}`},
		{name: "bool reading", payload: `{"total_usage_day": true}`},
		{name: "numeric timestamp", payload: `{"meter_time": 1704067200}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.payload))
			assert.Nil(t, s)
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %v", err)
		})
	}
}

func TestMilli(t *testing.T) {
	var tests = []struct {
		name     string
		given    []string
		expected int64
	}{
		{name: "whole", given: []string{"100.0"}, expected: 100000},
		{name: "sum", given: []string{"100.0", "50.1"}, expected: 150100},
		{name: "truncates", given: []string{"0.0019"}, expected: 1},
		{name: "exact decimal", given: []string{"1.005"}, expected: 1005},
		{name: "truncates after sum", given: []string{"0.0005", "0.0005"}, expected: 1},
		{name: "negative truncates toward zero", given: []string{"-0.0019"}, expected: -1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			values := make([]*Value, 0, len(tt.given))
			for _, s := range tt.given {
				v, err := NewValue(s)
				require.NoError(t, err)
				values = append(values, v)
			}
			assert.Equal(t, tt.expected, Milli(values...))
		})
	}
}
