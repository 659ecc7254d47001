package energy

import "time"

// Totals is the running state between readings. A nil member means no fault
// free value has been seen since the process started. It is only changed by
// Deriver.Derive and must not be shared between concurrent callers.
type Totals struct {
	Used      *int64     `json:"used"`
	Exported  *int64     `json:"exported"`
	Timestamp *time.Time `json:"timestamp"`
}

func (t *Totals) hasPrevious() bool {
	return t.Timestamp != nil
}
