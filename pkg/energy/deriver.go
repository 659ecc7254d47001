package energy

import (
	"fmt"
	"strings"
	"time"

	"github.com/nergy-se/energybridge/pkg/reading"
)

// gas readings without their own timestamp are stamped on this boundary.
const gasInterval = 10 * time.Second

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type Deriver struct {
	maxDelay int64
	location *time.Location
	now      func() time.Time
}

// NewDeriver returns a Deriver that suppresses deltas when two readings are
// more than maxDelay seconds apart. Timestamps without an offset are read in loc.
func NewDeriver(maxDelay int64, loc *time.Location) *Deriver {
	if loc == nil {
		loc = time.Local
	}
	return &Deriver{
		maxDelay: maxDelay,
		location: loc,
		now:      time.Now,
	}
}

// Derive computes the metric fields for s and advances totals. totals is left
// untouched when an error is returned.
func (d *Deriver) Derive(s *reading.Snapshot, totals *Totals) (*Fields, error) {
	ts, err := d.parseTime("meter_time", s.MeterTime)
	if err != nil {
		return nil, err
	}

	gasTime := d.now().Truncate(gasInterval)
	if s.GasTime != nil {
		gasTime, err = d.parseTime("gas_last_measurement", s.GasTime)
		if err != nil {
			return nil, err
		}
	}

	err = requireCumulative(s)
	if err != nil {
		return nil, err
	}

	f := &Fields{
		Time:           ts,
		GasTime:        gasTime,
		UsageNight:     s.UsageNight.Float64(),
		UsageDay:       s.UsageDay.Float64(),
		DeliveredNight: s.DeliveredNight.Float64(),
		DeliveredDay:   s.DeliveredDay.Float64(),
	}
	if s.PowerDraw != nil {
		f.CurrentPower = Pointer(s.PowerDraw.Milli())
		f.CurrentDraw = Pointer(s.PowerDraw.Float64())
	}
	if s.PowerDelivery != nil {
		f.CurrentExport = Pointer(s.PowerDelivery.Milli())
		f.CurrentDelivery = Pointer(s.PowerDelivery.Float64())
	}
	if s.GasUsage != nil {
		f.GasUsage = Pointer(s.GasUsage.Float64())
	}

	used := totals.Used
	if s.UsageNight.Positive() && s.UsageDay.Positive() {
		used = Pointer(reading.Milli(s.UsageNight, s.UsageDay))
	} else {
		f.diagnose(SensorFaultUsage, "usage reading night=%s day=%s not positive, keeping previous total %s",
			s.UsageNight, s.UsageDay, formatTotal(totals.Used))
	}

	exported := totals.Exported
	if s.DeliveredNight.Positive() && s.DeliveredDay.Positive() {
		exported = Pointer(reading.Milli(s.DeliveredNight, s.DeliveredDay))
	} else {
		f.diagnose(SensorFaultExport, "delivered reading night=%s day=%s not positive, keeping previous total %s",
			s.DeliveredNight, s.DeliveredDay, formatTotal(totals.Exported))
	}

	if totals.hasPrevious() {
		delay := int64(ts.Sub(*totals.Timestamp) / time.Second)
		if delay > d.maxDelay {
			f.diagnose(FeedGap, "%ds since previous reading exceeds max delay %ds, reporting no change", delay, d.maxDelay)
		} else {
			f.PowerUsed = f.delta(NegativeUsage, used, totals.Used)
			f.PowerExported = f.delta(NegativeExport, exported, totals.Exported)
		}
	}

	totals.Used = used
	totals.Exported = exported
	totals.Timestamp = &ts

	return f, nil
}

// delta is 0 when either side is unknown. A negative delta means a meter
// rollover or a corrupt reading, it is flagged and clamped to 0.
func (f *Fields) delta(kind DiagnosticKind, current, previous *int64) int64 {
	if current == nil || previous == nil {
		return 0
	}
	v := *current - *previous
	if v < 0 {
		f.diagnose(kind, "total went down from %d to %d, reporting no change", *previous, *current)
		return 0
	}
	return v
}

func (f *Fields) diagnose(kind DiagnosticKind, format string, args ...interface{}) {
	f.Diagnostics = append(f.Diagnostics, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (d *Deriver) parseTime(field string, s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, &TimestampError{Field: field, Err: ErrMissingTimestamp}
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return time.Time{}, &TimestampError{Field: field, Err: ErrMissingTimestamp}
	}

	t, err := time.Parse(time.RFC3339Nano, v)
	if err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		t, err = time.ParseInLocation(layout, v, d.location)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, &TimestampError{Field: field, Value: v, Err: err}
}

func requireCumulative(s *reading.Snapshot) error {
	switch {
	case s.UsageNight == nil:
		return fmt.Errorf("%w: total_usage_night", ErrMissingReading)
	case s.UsageDay == nil:
		return fmt.Errorf("%w: total_usage_day", ErrMissingReading)
	case s.DeliveredNight == nil:
		return fmt.Errorf("%w: total_energy_delivered_night", ErrMissingReading)
	case s.DeliveredDay == nil:
		return fmt.Errorf("%w: total_energy_delivered_day", ErrMissingReading)
	}
	return nil
}

func formatTotal(i *int64) string {
	if i == nil {
		return "unset"
	}
	return fmt.Sprintf("%d", *i)
}

func Pointer[K any](val K) *K {
	return &val
}
