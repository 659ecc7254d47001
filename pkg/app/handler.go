package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nergy-se/energybridge/pkg/alarm"
	"github.com/nergy-se/energybridge/pkg/energy"
	"github.com/nergy-se/energybridge/pkg/meter"
	"github.com/nergy-se/energybridge/pkg/reading"
	"github.com/sirupsen/logrus"
)

const defaultWriteTimeout = 10 * time.Second

// Handler turns meter messages into stored metrics. It owns the running
// totals and is safe to call from several goroutines.
type Handler struct {
	deriver     *energy.Deriver
	storage     Storage
	measurement string
	cache       *meter.Cache
	alarms      *alarm.ActiveAlarms

	writeTimeout time.Duration

	mu     sync.Mutex
	totals energy.Totals
}

func NewHandler(deriver *energy.Deriver, storage Storage, measurement string, cache *meter.Cache) *Handler {
	return &Handler{
		deriver:      deriver,
		storage:      storage,
		measurement:  measurement,
		cache:        cache,
		alarms:       &alarm.ActiveAlarms{},
		writeTimeout: defaultWriteTimeout,
	}
}

// HandleMessage derives and stores one payload. Derivation errors leave the
// totals unchanged. Storage errors are returned after every write was tried.
func (h *Handler) HandleMessage(ctx context.Context, payload []byte) error {
	fields, err := h.derive(payload)
	if err != nil {
		var decodeErr *reading.DecodeError
		if errors.As(err, &decodeErr) {
			messagesTotal.WithLabelValues(resultDecodeError).Inc()
		} else {
			messagesTotal.WithLabelValues(resultDeriveError).Inc()
		}
		return err
	}

	err = h.store(ctx, fields)
	if err != nil {
		messagesTotal.WithLabelValues(resultStorageError).Inc()
		return err
	}
	messagesTotal.WithLabelValues(resultOK).Inc()
	return nil
}

// Totals returns a copy of the running totals.
func (h *Handler) Totals() energy.Totals {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totals
}

func (h *Handler) derive(payload []byte) (*energy.Fields, error) {
	snapshot, err := reading.Parse(payload)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	fields, err := h.deriver.Derive(snapshot, &h.totals)
	if err != nil {
		return nil, fmt.Errorf("error deriving reading: %w", err)
	}

	if h.totals.Used != nil {
		totalUsedGauge.Set(float64(*h.totals.Used))
	}
	if h.totals.Exported != nil {
		totalExportedGauge.Set(float64(*h.totals.Exported))
	}
	h.logDiagnostics(fields)
	if h.cache != nil {
		h.cache.Set(fields)
	}
	return fields, nil
}

func (h *Handler) logDiagnostics(fields *energy.Fields) {
	active := make([]string, 0, len(fields.Diagnostics))
	for _, d := range fields.Diagnostics {
		kind := d.Kind.String()
		active = append(active, kind)
		diagnosticsTotal.WithLabelValues(kind).Inc()

		entry := logrus.WithFields(logrus.Fields{
			"kind":       kind,
			"meter_time": fields.Time,
		})
		if h.alarms.Add(kind) {
			entry.Warn(d.Message)
		} else {
			entry.Debug(d.Message)
		}
	}
	for _, kind := range h.alarms.Retain(active...) {
		logrus.WithField("kind", kind).Info("diagnostic cleared")
	}
}

func (h *Handler) store(ctx context.Context, fields *energy.Fields) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()

	var errs []error
	err := h.write(h.measurement, func() error {
		return h.storage.WritePoint(ctx, h.measurement, fields.Map(), fields.Time)
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("error writing %s: %w", h.measurement, err))
	}

	for _, v := range fields.MeterValues() {
		err := h.write(v.Table, func() error {
			return h.storage.WriteMeter(ctx, v.Table, v.Meter, v.Value, v.Time)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("error writing %s meter=%s: %w", v.Table, v.Meter, err))
		}
	}
	return errors.Join(errs...)
}

func (h *Handler) write(table string, fn func() error) error {
	start := time.Now()
	err := fn()
	storageWriteDurationSeconds.WithLabelValues(table).Observe(time.Since(start).Seconds())
	if err != nil {
		storageWritesTotal.WithLabelValues(table, resultError).Inc()
		return err
	}
	storageWritesTotal.WithLabelValues(table, resultOK).Inc()
	return nil
}
