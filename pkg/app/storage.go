package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nergy-se/energybridge/pkg/config"
	"github.com/nergy-se/energybridge/pkg/influx"
	"github.com/nergy-se/energybridge/pkg/sqlitestore"
)

// Storage receives the combined point and the per meter values of every reading.
type Storage interface {
	WritePoint(ctx context.Context, measurement string, fields map[string]interface{}, ts time.Time) error
	WriteMeter(ctx context.Context, table, meter string, value float64, ts time.Time) error
	Close() error
}

func openStorage(c *config.Config) (Storage, error) {
	switch c.Storage {
	case config.StorageInfluxDB:
		return influx.New(c.InfluxURL, c.InfluxToken), nil
	case config.StorageSQLite:
		store, err := sqlitestore.Open(c.SqlitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage %q", c.Storage)
}
