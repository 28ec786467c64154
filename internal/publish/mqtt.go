package publish

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	publishTimeout = 10 * time.Second
)

// Config describes the MQTT broker connection.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MQTT is a paho-backed Publisher that marks every message retained.
type MQTT struct {
	client mqtt.Client
}

// Dial connects to the broker. The status topic carries a retained "online"
// once connected and an "offline" will if the connection drops.
func Dial(cfg Config) (*MQTT, error) {
	statusTopic := StatusTopic(cfg.TopicPrefix)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetWill(statusTopic, "offline", qos, true)
	opts.OnConnect = func(c mqtt.Client) {
		c.Publish(statusTopic, qos, true, "online")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return &MQTT{client: client}, nil
}

func (m *MQTT) Publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	return token.Error()
}

// Close disconnects after letting queued messages drain briefly.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
