// Package mqtt provides the broker client used to relay emergency alerts.
package mqtt

import (
	"context"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
)

// Client defines the broker operations used by alert publishers.
type Client interface {
	// Connect establishes the broker connection, honoring ctx cancellation.
	Connect(ctx context.Context) error
	// Publish sends payload to topic at QoS 1.
	Publish(ctx context.Context, topic, payload string) error
	// IsConnected reports whether the broker connection is up.
	IsConnected() bool
	// Disconnect closes the broker connection.
	Disconnect()
}

type client struct {
	settings conf.MQTTSettings
	log      logger.Logger

	mu       sync.Mutex
	internal paho.Client
}

// NewClient creates a broker client from settings.
func NewClient(settings conf.MQTTSettings, log logger.Logger) (Client, error) {
	if settings.Broker == "" {
		return nil, errors.Newf("broker address is required").
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if log == nil {
		log = logger.Silent()
	}
	return &client{settings: settings, log: log}, nil
}

func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internal != nil && c.internal.IsConnected() {
		return nil
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.settings.Broker)
	opts.SetClientID(c.settings.ClientID)
	opts.SetConnectTimeout(c.settings.ConnectTimeout.Std())
	opts.SetCleanSession(true)
	if c.settings.Username != "" {
		opts.SetUsername(c.settings.Username)
		opts.SetPassword(c.settings.Password)
	}

	c.internal = paho.NewClient(opts)

	token := c.internal.Connect()
	if err := waitToken(ctx, token); err != nil {
		return errors.Wrap(err).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Context("broker", c.settings.Broker).
			Build()
	}

	c.log.Info("connected to alert broker", logger.String("broker", c.settings.Broker))
	return nil
}

func (c *client) Publish(ctx context.Context, topic, payload string) error {
	c.mu.Lock()
	internal := c.internal
	c.mu.Unlock()

	if internal == nil || !internal.IsConnected() {
		return errors.Newf("not connected to broker").
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Build()
	}

	token := internal.Publish(topic, 1, false, payload)
	if err := waitToken(ctx, token); err != nil {
		return errors.Wrap(err).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Context("topic", topic).
			Build()
	}
	return nil
}

func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internal != nil && c.internal.IsConnected()
}

func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internal != nil && c.internal.IsConnected() {
		c.internal.Disconnect(250)
	}
}

// waitToken blocks until the token completes or ctx is done.
func waitToken(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
