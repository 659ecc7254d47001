package energy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsMap(t *testing.T) {
	f := Fields{
		CurrentPower:   Pointer(int64(512)),
		UsageNight:     100,
		UsageDay:       50.1,
		DeliveredNight: 10,
		DeliveredDay:   5,
		PowerUsed:      100,
	}

	m := f.Map()
	assert.Equal(t, int64(512), m["current_power"])
	assert.NotContains(t, m, "current_export")
	assert.NotContains(t, m, "gas_usage_total")
	assert.Equal(t, 50.1, m["total_usage_day"])
	assert.Equal(t, int64(100), m["power_used"])
	assert.Equal(t, int64(0), m["power_exported"])
	assert.Len(t, m, 7)
}

func TestFieldsMeterValues(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gasTs := ts.Add(-5 * time.Minute)
	f := Fields{
		Time:            ts,
		GasTime:         gasTs,
		CurrentDraw:     Pointer(0.5),
		CurrentDelivery: Pointer(1.2),
		UsageNight:      100,
		UsageDay:        50,
		DeliveredNight:  10,
		DeliveredDay:    5,
		GasUsage:        Pointer(2042.118),
	}

	values := f.MeterValues()
	assert.Equal(t, []MeterValue{
		{Table: TableCurrentUsage, Meter: "current", Value: 0.5, Time: ts},
		{Table: TableCurrentDelivery, Meter: "current", Value: 1.2, Time: ts},
		{Table: TableUsage, Meter: "meter1", Value: 100, Time: ts},
		{Table: TableUsage, Meter: "meter2", Value: 50, Time: ts},
		{Table: TableGenerated, Meter: "meter1", Value: 10, Time: ts},
		{Table: TableGenerated, Meter: "meter2", Value: 5, Time: ts},
		{Table: TableUsage, Meter: "gas", Value: 2042.118, Time: gasTs},
	}, values)

	f.CurrentDraw = nil
	f.CurrentDelivery = nil
	f.GasUsage = nil
	assert.Len(t, f.MeterValues(), 4)
}

func TestFieldsJSONKeepsNulls(t *testing.T) {
	f := Fields{
		Diagnostics: []Diagnostic{{Kind: FeedGap, Message: "gap"}},
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"current_power":null`)
	assert.Contains(t, string(b), `"current_export":null`)
	assert.Contains(t, string(b), `"kind":"feed_gap"`)
}
