package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	connectTimeout   = 30 * time.Second
	subscribeTimeout = 10 * time.Second
)

type Options struct {
	// Address is host:port of the broker.
	Address   string
	ClientID  string
	Keepalive time.Duration
	Topic     string
	QoS       byte
}

// Subscriber connects to a broker and hands every message on Topic to a
// handler. Messages are delivered one at a time in arrival order.
type Subscriber struct {
	opts   Options
	handle func(payload []byte)
	client paho.Client

	subscribed     chan struct{}
	subscribedOnce sync.Once
}

func NewSubscriber(opts Options, handle func(payload []byte)) *Subscriber {
	return &Subscriber{
		opts:       opts,
		handle:     handle,
		subscribed: make(chan struct{}),
	}
}

// Start connects and returns once the first subscription is acknowledged.
// The connection is closed when ctx is done.
func (s *Subscriber) Start(ctx context.Context, wg *sync.WaitGroup) error {
	clientOpts := paho.NewClientOptions().
		AddBroker("tcp://" + s.opts.Address).
		SetClientID(s.opts.ClientID).
		SetKeepAlive(s.opts.Keepalive).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logrus.Warnf("mqtt connection lost: %s", err)
		}).
		SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
			logrus.Info("mqtt reconnecting")
		})

	s.client = paho.NewClient(clientOpts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to mqtt broker %s", s.opts.Address)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("error connecting to mqtt broker %s: %w", s.opts.Address, err)
	}

	select {
	case <-s.subscribed:
	case <-time.After(subscribeTimeout):
		s.client.Disconnect(250)
		return fmt.Errorf("timeout subscribing to %s", s.opts.Topic)
	case <-ctx.Done():
		s.client.Disconnect(250)
		return ctx.Err()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.client.Disconnect(250)
		logrus.Info("mqtt disconnected")
	}()
	return nil
}

// Subscribing in onConnect means the subscription is renewed after a reconnect.
func (s *Subscriber) onConnect(c paho.Client) {
	logrus.Infof("connected to mqtt broker %s", s.opts.Address)
	token := c.Subscribe(s.opts.Topic, s.opts.QoS, func(_ paho.Client, msg paho.Message) {
		s.handle(msg.Payload())
	})
	if !token.WaitTimeout(subscribeTimeout) {
		logrus.Errorf("timeout subscribing to %s", s.opts.Topic)
		return
	}
	if err := token.Error(); err != nil {
		logrus.Errorf("error subscribing to %s: %s", s.opts.Topic, err)
		return
	}
	logrus.Infof("subscribed to %s", s.opts.Topic)
	s.subscribedOnce.Do(func() {
		close(s.subscribed)
	})
}
