// Package events publishes best-effort lifecycle notifications over MQTT.
// The channel carries no core state; failures are logged and dropped so a
// broker outage never fails a request.
package events

import (
	"encoding/json"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// RequestEvent is the payload published when a maintenance request changes.
type RequestEvent struct {
	Action        string    `json:"action"` // "created", "updated", "deleted", "commented"
	RequestID     string    `json:"requestId"`
	RequestNumber string    `json:"requestNumber,omitempty"`
	Status        string    `json:"status,omitempty"`
	ActorID       string    `json:"actorId"`
	ActorRole     string    `json:"actorRole"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher emits request lifecycle events.
type Publisher interface {
	PublishRequestEvent(event RequestEvent)
}

// NopPublisher drops every event. Used when no broker is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) PublishRequestEvent(RequestEvent) {}

// MQTTPublisher publishes events to a gearguard/requests/<action> topic.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewPublisher connects to the broker named by MQTT_BROKER. When the
// variable is unset, a NopPublisher is returned and the live-update channel
// is disabled.
func NewPublisher() Publisher {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		log.Info("MQTT_BROKER not set, live updates disabled")
		return NopPublisher{}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("gearguard-api").
		SetConnectRetry(true).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.WithError(token.Error()).Warn("MQTT connect failed, live updates disabled")
		return NopPublisher{}
	}
	return &MQTTPublisher{client: client}
}

// PublishRequestEvent publishes the event without waiting for delivery.
func (p *MQTTPublisher) PublishRequestEvent(event RequestEvent) {
	if !p.client.IsConnected() {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("failed to encode request event")
		return
	}
	topic := "gearguard/requests/" + event.Action
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if token.WaitTimeout(3*time.Second) && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).
				Warn("failed to publish request event")
		}
	}()
}
