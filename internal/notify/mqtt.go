// Package notify announces fuel decisions that need an audit.
package notify

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// DefaultTopic carries audit decisions.
const DefaultTopic = "fleet/fuel/audit"

const (
	auditQoS       byte = 1
	publishTimeout      = 5 * time.Second
)

// publisher is the subset of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// AuditPublisher publishes Audit decisions as JSON.
type AuditPublisher struct {
	client  publisher
	topic   string
	timeout time.Duration
	logger  log.FieldLogger
}

// NewAuditPublisher wraps an already connected client.
func NewAuditPublisher(client publisher, topic string, logger log.FieldLogger) *AuditPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AuditPublisher{client: client, topic: topic, timeout: publishTimeout, logger: logger}
}

// Connect dials the broker and returns a publisher bound to topic.
func Connect(broker, clientID, topic string, logger log.FieldLogger) (*AuditPublisher, mqtt.Client, error) {
	if broker == "" {
		return nil, nil, eris.New("notify: mqtt broker is empty")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, nil, eris.Errorf("notify: timed out connecting to %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, eris.Wrapf(err, "notify: connect to %s", broker)
	}
	return NewAuditPublisher(client, topic, logger), client, nil
}

// NotifyAudit publishes d at QoS 1 and waits for the broker ack.
func (p *AuditPublisher) NotifyAudit(ctx context.Context, d models.DecisionRecord) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "notify: marshal decision")
	}
	token := p.client.Publish(p.topic, auditQoS, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "notify: publish cancelled")
	case <-time.After(p.timeout):
		return eris.Errorf("notify: publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return eris.Wrapf(err, "notify: publish to %s", p.topic)
	}

	p.logger.WithFields(log.Fields{
		"alert_id": d.AlertID,
		"topic":    p.topic,
		"diff_pct": d.FuelDifferencePct,
	}).Info("Published audit decision")
	return nil
}
