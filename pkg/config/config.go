package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/koding/multiconfig"
)

const (
	StorageInfluxDB = "influxdb"
	StorageSQLite   = "sqlite"
)

// Config is read once at startup and never changed afterwards.
type Config struct {
	Topic string `required:"true"`

	MqttHost      string `default:"localhost"`
	MqttPort      int    `default:"1883"`
	MqttKeepalive int    `default:"60"` // seconds
	MqttClientID  string `default:"energybridge"`

	// EmbeddedBroker runs an MQTT broker on MqttListen instead of connecting to MqttHost.
	EmbeddedBroker bool
	MqttListen     string `default:":1883"`

	Storage     string `default:"influxdb"`
	InfluxURL   string `default:"http://localhost:8086/write?db=energy"`
	InfluxToken string
	SqlitePath  string `default:"energy.db"`
	Measurement string `default:"energy"`

	// MaxDelay in seconds between two readings before deltas are reported as 0.
	MaxDelay int    `default:"60"`
	TimeZone string `default:"Local"`

	HTTPAddress string `default:":9100"`
	LogLevel    string `default:"info"`
}

// Load reads defaults, the optional TOML file at path, ENERGY_* environment
// variables and command line flags, in that order.
func Load(path string, args []string) (*Config, error) {
	loaders := []multiconfig.Loader{&multiconfig.TagLoader{}}
	if path != "" {
		loaders = append(loaders, &multiconfig.TOMLLoader{Path: path})
	}
	loaders = append(loaders,
		&multiconfig.EnvironmentLoader{Prefix: "ENERGY", CamelCase: true},
		&multiconfig.FlagLoader{CamelCase: true, Args: args},
	)

	d := &multiconfig.DefaultLoader{
		Loader:    multiconfig.MultiLoader(loaders...),
		Validator: multiconfig.MultiValidator(&multiconfig.RequiredValidator{}),
	}

	config := &Config{}
	err := d.Load(config)
	if err != nil {
		return nil, err
	}
	err = d.Validate(config)
	if err != nil {
		return nil, err
	}
	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageInfluxDB, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q, expected %s or %s", c.Storage, StorageInfluxDB, StorageSQLite)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("max delay must not be negative: %d", c.MaxDelay)
	}
	if c.MqttKeepalive < 0 {
		return fmt.Errorf("mqtt keepalive must not be negative: %d", c.MqttKeepalive)
	}
	if !c.EmbeddedBroker && (c.MqttPort <= 0 || c.MqttPort > 65535) {
		return fmt.Errorf("invalid mqtt port: %d", c.MqttPort)
	}
	_, err := c.Location()
	return err
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("error loading time zone: %w", err)
	}
	return loc, nil
}

func (c *Config) Keepalive() time.Duration {
	return time.Duration(c.MqttKeepalive) * time.Second
}

func (c *Config) MqttAddress() string {
	return net.JoinHostPort(c.MqttHost, strconv.Itoa(c.MqttPort))
}
