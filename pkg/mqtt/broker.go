package mqtt

import (
	"context"
	"sync"

	mqttv2 "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/sirupsen/logrus"
)

// StartBroker runs an MQTT broker on address until ctx is done. Meters can
// publish straight to it and SubscribeInline reads from it without a network
// client.
func StartBroker(ctx context.Context, wg *sync.WaitGroup, address string) (*mqttv2.Server, error) {
	server := mqttv2.New(&mqttv2.Options{
		InlineClient: true,
	})

	// Allow all connections.
	_ = server.AddHook(new(auth.AllowHook), nil)

	tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: address})
	err := server.AddListener(tcp)
	if err != nil {
		return server, err
	}

	err = server.Serve()
	if err != nil {
		return server, err
	}
	logrus.Infof("mqtt broker listening on %s", tcp.Address())

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		server.Close()
	}()
	return server, nil
}

// SubscribeInline calls handle with the payload of every message published to
// topic on server.
func SubscribeInline(server *mqttv2.Server, topic string, handle func(payload []byte)) error {
	err := server.Subscribe(topic, 1, func(cl *mqttv2.Client, sub packets.Subscription, pk packets.Packet) {
		logrus.WithFields(logrus.Fields{
			"client": cl.ID,
			"topic":  pk.TopicName,
		}).Trace("inline client received message")
		handle(pk.Payload)
	})
	if err != nil {
		return err
	}
	logrus.Infof("subscribed to %s on embedded broker", topic)
	return nil
}
