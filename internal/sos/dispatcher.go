package sos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/mqtt"
	"github.com/equitrack/equitrack/internal/observability/metrics"
)

// Alert describes a confirmed fall ready for dispatch.
type Alert struct {
	Phone       string    `json:"phone"`
	Lat         float64   `json:"lat,omitempty"`
	Lon         float64   `json:"lon,omitempty"`
	HasPosition bool      `json:"has_position"`
	Time        time.Time `json:"time"`
}

// Message renders the emergency text. Only a fresh position is ever
// embedded; a stale cached one could point rescuers at the wrong spot.
func (a Alert) Message() string {
	location := "Position GPS indisponible (Recherche en cours...)"
	if a.HasPosition {
		location = fmt.Sprintf("http://maps.google.com/?q=%v,%v", a.Lat, a.Lon)
	}
	return "URGENCE PWA : Chute détectée ! Ma position : " + location
}

// SMSLink renders the sms: URI that opens the device composer.
func (a Alert) SMSLink() string {
	return "sms:" + a.Phone + "?body=" + url.QueryEscape(a.Message())
}

// Notifier delivers a confirmed alert through one channel.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Dispatcher fans a confirmed alert out to all configured notifiers.
// Delivery is best effort: one failing channel never blocks the others.
type Dispatcher struct {
	notifiers []Notifier
	log       logger.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher creates a dispatcher over the given notifiers.
func NewDispatcher(log logger.Logger, m *metrics.Metrics, notifiers ...Notifier) *Dispatcher {
	if log == nil {
		log = logger.Silent()
	}
	return &Dispatcher{notifiers: notifiers, log: log, metrics: m}
}

// Dispatch sends the alert through every notifier, returning the last error
// encountered.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) error {
	if d.metrics != nil {
		d.metrics.SOSAlerts.Inc()
	}
	d.log.Warn("dispatching emergency alert",
		logger.Bool("has_position", alert.HasPosition))

	var lastErr error
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			d.log.Error("alert delivery failed", logger.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// MQTTNotifier publishes alerts to a broker topic as JSON.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
}

// NewMQTTNotifier creates a notifier publishing to topic.
func NewMQTTNotifier(client mqtt.Client, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic}
}

// Notify publishes the alert, connecting first if needed.
func (n *MQTTNotifier) Notify(ctx context.Context, alert Alert) error {
	if !n.client.IsConnected() {
		if err := n.client.Connect(ctx); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.topic, string(payload))
}
