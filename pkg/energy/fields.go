package energy

import "time"

const (
	TableCurrentUsage    = "current_usage"
	TableCurrentDelivery = "current_delivery"
	TableUsage           = "usage"
	TableGenerated       = "generated"
)

// Fields is the result of deriving one snapshot.
type Fields struct {
	Time    time.Time `json:"time"`
	GasTime time.Time `json:"gasTime"`

	// milliwatt
	CurrentPower  *int64 `json:"current_power"`
	CurrentExport *int64 `json:"current_export"`

	// raw values as reported, kept for the per meter writes.
	CurrentDraw     *float64 `json:"-"`
	CurrentDelivery *float64 `json:"-"`

	UsageNight     float64  `json:"total_usage_night"`
	UsageDay       float64  `json:"total_usage_day"`
	DeliveredNight float64  `json:"total_energy_delivered_night"`
	DeliveredDay   float64  `json:"total_energy_delivered_day"`
	GasUsage       *float64 `json:"gas_usage_total"`

	// milli kWh since the previous reading
	PowerUsed     int64 `json:"power_used"`
	PowerExported int64 `json:"power_exported"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Map returns the combined point. Absent values are left out.
func (f Fields) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if f.CurrentPower != nil {
		m["current_power"] = *f.CurrentPower
	}
	if f.CurrentExport != nil {
		m["current_export"] = *f.CurrentExport
	}
	m["total_usage_night"] = f.UsageNight
	m["total_usage_day"] = f.UsageDay
	m["total_energy_delivered_night"] = f.DeliveredNight
	m["total_energy_delivered_day"] = f.DeliveredDay
	if f.GasUsage != nil {
		m["gas_usage_total"] = *f.GasUsage
	}
	m["power_used"] = f.PowerUsed
	m["power_exported"] = f.PowerExported

	return m
}

type MeterValue struct {
	Table string
	Meter string
	Value float64
	Time  time.Time
}

// MeterValues lists the per meter writes. meter1 is low (night) tariff,
// meter2 is high (day) tariff.
func (f Fields) MeterValues() []MeterValue {
	values := make([]MeterValue, 0, 7)
	if f.CurrentDraw != nil {
		values = append(values, MeterValue{Table: TableCurrentUsage, Meter: "current", Value: *f.CurrentDraw, Time: f.Time})
	}
	if f.CurrentDelivery != nil {
		values = append(values, MeterValue{Table: TableCurrentDelivery, Meter: "current", Value: *f.CurrentDelivery, Time: f.Time})
	}
	values = append(values,
		MeterValue{Table: TableUsage, Meter: "meter1", Value: f.UsageNight, Time: f.Time},
		MeterValue{Table: TableUsage, Meter: "meter2", Value: f.UsageDay, Time: f.Time},
		MeterValue{Table: TableGenerated, Meter: "meter1", Value: f.DeliveredNight, Time: f.Time},
		MeterValue{Table: TableGenerated, Meter: "meter2", Value: f.DeliveredDay, Time: f.Time},
	)
	if f.GasUsage != nil {
		values = append(values, MeterValue{Table: TableUsage, Meter: "gas", Value: *f.GasUsage, Time: f.GasTime})
	}
	return values
}
