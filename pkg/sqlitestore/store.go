// Package sqlitestore keeps derived points in a local SQLite file, for
// installations without an InfluxDB.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS points (
	timestamp   INTEGER NOT NULL,
	measurement TEXT    NOT NULL,
	fields      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS points_timestamp ON points (measurement, timestamp);

CREATE TABLE IF NOT EXISTS meter_values (
	timestamp  INTEGER NOT NULL,
	table_name TEXT    NOT NULL,
	meter      TEXT    NOT NULL,
	value      REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS meter_values_timestamp ON meter_values (table_name, meter, timestamp);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer, serialized by the handler anyway
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error opening sqlite %s: %w", path, err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) WritePoint(ctx context.Context, measurement string, fields map[string]interface{}, ts time.Time) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO points (timestamp, measurement, fields) VALUES (?, ?, ?)",
		ts.UnixNano(),
		measurement,
		string(b),
	)
	return err
}

func (s *Store) WriteMeter(ctx context.Context, table, meter string, value float64, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meter_values (timestamp, table_name, meter, value) VALUES (?, ?, ?, ?)",
		ts.UnixNano(),
		table,
		meter,
		value,
	)
	return err
}

type MeterValue struct {
	Time  time.Time
	Table string
	Meter string
	Value float64
}

// MeterValues returns every stored value for table and meter, oldest first.
func (s *Store) MeterValues(ctx context.Context, table, meter string) ([]MeterValue, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT timestamp, value FROM meter_values WHERE table_name = ? AND meter = ? ORDER BY timestamp",
		table,
		meter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []MeterValue
	for rows.Next() {
		var ns int64
		v := MeterValue{Table: table, Meter: meter}
		if err := rows.Scan(&ns, &v.Value); err != nil {
			return nil, err
		}
		v.Time = time.Unix(0, ns).UTC()
		values = append(values, v)
	}
	return values, rows.Err()
}

// LatestPoint returns the newest fields stored for measurement.
func (s *Store) LatestPoint(ctx context.Context, measurement string) (map[string]interface{}, time.Time, error) {
	var ns int64
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT timestamp, fields FROM points WHERE measurement = ? ORDER BY timestamp DESC LIMIT 1",
		measurement,
	).Scan(&ns, &raw)
	if err != nil {
		return nil, time.Time{}, err
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, time.Time{}, err
	}
	return fields, time.Unix(0, ns).UTC(), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
