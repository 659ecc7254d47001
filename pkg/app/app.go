package app

import (
	"context"
	"sync"

	mqttv2 "github.com/mochi-mqtt/server/v2"
	"github.com/nergy-se/energybridge/pkg/config"
	"github.com/nergy-se/energybridge/pkg/energy"
	"github.com/nergy-se/energybridge/pkg/meter"
	"github.com/nergy-se/energybridge/pkg/mqtt"
	"github.com/sirupsen/logrus"
)

type App struct {
	wg      *sync.WaitGroup
	config  *config.Config
	cache   *meter.Cache
	storage Storage
	handler *Handler
	broker  *mqttv2.Server
}

func New(config *config.Config) *App {
	return &App{
		wg:     &sync.WaitGroup{},
		config: config,
		cache:  &meter.Cache{},
	}
}

// Start opens storage and begins consuming readings. Everything started here
// stops when ctx is done.
func (a *App) Start(ctx context.Context) error {
	loc, err := a.config.Location()
	if err != nil {
		return err
	}

	a.storage, err = openStorage(a.config)
	if err != nil {
		return err
	}
	deriver := energy.NewDeriver(int64(a.config.MaxDelay), loc)
	a.handler = NewHandler(deriver, a.storage, a.config.Measurement, a.cache)

	err = a.start(ctx)
	if err != nil {
		a.storage.Close()
		return err
	}
	return nil
}

func (a *App) start(ctx context.Context) error {
	if a.config.HTTPAddress != "" {
		err := a.startStatusServer(ctx)
		if err != nil {
			return err
		}
	}

	if a.config.EmbeddedBroker {
		server, err := mqtt.StartBroker(ctx, a.wg, a.config.MqttListen)
		if err != nil {
			return err
		}
		a.broker = server
		return mqtt.SubscribeInline(server, a.config.Topic, a.onMessage(ctx))
	}

	sub := mqtt.NewSubscriber(mqtt.Options{
		Address:   a.config.MqttAddress(),
		ClientID:  a.config.MqttClientID,
		Keepalive: a.config.Keepalive(),
		Topic:     a.config.Topic,
		QoS:       1,
	}, a.onMessage(ctx))
	return sub.Start(ctx, a.wg)
}

// Wait blocks until everything started by Start has stopped and closes storage.
func (a *App) Wait() {
	a.wg.Wait()
	if a.storage != nil {
		err := a.storage.Close()
		if err != nil {
			logrus.Errorf("error closing storage: %s", err)
		}
	}
}

// Broker returns the embedded broker, nil when connecting to an external one.
func (a *App) Broker() *mqttv2.Server {
	return a.broker
}

func (a *App) Latest() *energy.Fields {
	return a.cache.Get()
}

func (a *App) onMessage(ctx context.Context) func(payload []byte) {
	return func(payload []byte) {
		err := a.handler.HandleMessage(ctx, payload)
		if err != nil {
			logrus.Error(err)
		}
	}
}
