package influx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/sirupsen/logrus"
)

// Writer posts points to an InfluxDB write endpoint, one request per point.
type Writer struct {
	encoderPool sync.Pool
	httpClient  *http.Client
	writeURL    string
	token       string
}

// New returns a Writer for writeURL, for example
// http://localhost:8086/write?db=energy. token is sent as an
// "Authorization: Token" header when set.
func New(writeURL, token string) *Writer {
	return &Writer{
		encoderPool: sync.Pool{
			New: func() any {
				e := new(lineprotocol.Encoder)
				e.SetLax(false)
				e.SetPrecision(lineprotocol.Nanosecond)
				return e
			},
		},
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		writeURL: writeURL,
		token:    token,
	}
}

func (w *Writer) WritePoint(ctx context.Context, measurement string, fields map[string]interface{}, ts time.Time) error {
	return w.write(ctx, measurement, nil, fields, ts)
}

func (w *Writer) WriteMeter(ctx context.Context, table, meter string, value float64, ts time.Time) error {
	return w.write(ctx, table, map[string]string{"meter": meter}, map[string]interface{}{"value": value}, ts)
}

func (w *Writer) Close() error {
	w.httpClient.CloseIdleConnections()
	return nil
}

func (w *Writer) write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	e := w.encoderPool.Get().(*lineprotocol.Encoder)
	defer func() {
		e.Reset()
		e.ClearErr()
		w.encoderPool.Put(e)
	}()

	err := encode(e, measurement, tags, fields, ts)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.writeURL, bytes.NewReader(e.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if w.token != "" {
		req.Header.Set("Authorization", "Token "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("error writing %s StatusCode: %d: %s", measurement, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// encode writes one line. Tags and fields are sorted so the output is stable.
func encode(e *lineprotocol.Encoder, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	e.StartLine(measurement)

	for _, k := range sortedKeys(tags) {
		if tags[k] == "" {
			logrus.Debugf("influx: skipping empty tag %s", k)
			continue
		}
		e.AddTag(k, tags[k])
	}

	for _, k := range sortedKeys(fields) {
		v, ok := lineprotocol.NewValue(fields[k])
		if !ok {
			logrus.Debugf("influx: skipping invalid field %s=%v", k, fields[k])
			continue
		}
		e.AddField(k, v)
	}
	e.EndLine(ts)

	if err := e.Err(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", measurement, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
