package reading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("payload is not a JSON object")

// Snapshot is one decoded meter message. Every field is optional, a nil
// pointer means the meter did not send it.
type Snapshot struct {
	MeterTime *string `json:"meter_time"`
	GasTime   *string `json:"gas_last_measurement"`

	PowerDraw     *Value `json:"instantaneous_active_power_draw_l1"`
	PowerDelivery *Value `json:"instantaneous_active_power_delivery_l1"`

	// meter1 is low (night) tariff, meter2 is high (day) tariff.
	UsageNight     *Value `json:"total_usage_night"`
	UsageDay       *Value `json:"total_usage_day"`
	DeliveredNight *Value `json:"total_energy_delivered_night"`
	DeliveredDay   *Value `json:"total_energy_delivered_day"`

	GasUsage *Value `json:"gas_usage_total"`
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding meter reading: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Parse decodes a raw message payload. Unknown keys are ignored.
func Parse(payload []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, &DecodeError{Err: fmt.Errorf("invalid JSON: %q", truncate(trimmed))}
		}
		return nil, &DecodeError{Err: errNotObject}
	}

	s := &Snapshot{}
	err := json.Unmarshal(trimmed, s)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return s, nil
}

func truncate(b []byte) string {
	if len(b) > 64 {
		return string(b[:64]) + "..."
	}
	return string(b)
}
