package energy

type DiagnosticKind int

const (
	// SensorFaultUsage means a usage tariff reading was not positive and the
	// previous total was kept.
	SensorFaultUsage DiagnosticKind = iota
	SensorFaultExport
	// FeedGap means the readings were too far apart to compute a delta.
	FeedGap
	NegativeUsage
	NegativeExport
)

func (k DiagnosticKind) String() string {
	switch k {
	case SensorFaultUsage:
		return "sensor_fault_usage"
	case SensorFaultExport:
		return "sensor_fault_export"
	case FeedGap:
		return "feed_gap"
	case NegativeUsage:
		return "negative_usage"
	case NegativeExport:
		return "negative_export"
	}
	return "unknown"
}

func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

// SensorFault reports whether the diagnostic is about the meter itself rather
// than the feed.
func (d Diagnostic) SensorFault() bool {
	return d.Kind == SensorFaultUsage || d.Kind == SensorFaultExport
}
