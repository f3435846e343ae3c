package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"nrgchamp/distilltwin/internal/breaker"
)

// GateTransitionEvent mirrors one scheduler.Event bridged onto MQTT for
// live consumers (gate switches, interlock activations/clears).
type GateTransitionEvent struct {
	RunID   uuid.UUID `json:"runId"`
	T       float64   `json:"t"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// EventBridge publishes GateTransitionEvent to an MQTT broker under
// <topicPrefix>/<runID>/events. A nil client means telemetry is
// disabled (no MQTT_BROKER configured).
type EventBridge struct {
	client mqtt.Client
	prefix string
	br     *breaker.Breaker
	log    *slog.Logger
}

// NewEventBridge connects to broker and returns a bridge, or a disabled
// bridge if broker is empty.
func NewEventBridge(broker, topicPrefix string, log *slog.Logger) *EventBridge {
	if broker == "" {
		return &EventBridge{log: log}
	}
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID("distilltwin-engine")
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		log.Error("mqtt connect failed, event bridge disabled", "err", token.Error())
		return &EventBridge{log: log}
	}
	return &EventBridge{
		client: c,
		prefix: topicPrefix,
		br:     breaker.New("mqtt-events", breaker.Config{}, log),
		log:    log,
	}
}

// Publish sends ev, tolerating and logging failures.
func (b *EventBridge) Publish(ctx context.Context, ev GateTransitionEvent) {
	if b.client == nil {
		return
	}
	if ev.RunID == uuid.Nil {
		ev.RunID = uuid.New()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("event marshal failed", "err", err)
		return
	}
	topic := fmt.Sprintf("%s/%s/events", b.prefix, ev.RunID.String())
	err = b.br.Execute(ctx, func(context.Context) error {
		token := b.client.Publish(topic, 0, false, payload)
		token.Wait()
		return token.Error()
	})
	if err != nil {
		b.log.Warn("event publish skipped", "err", err, "kind", ev.Kind)
	}
}

// Close disconnects the client, if connected.
func (b *EventBridge) Close() {
	if b.client != nil {
		b.client.Disconnect(uint(250 * time.Millisecond.Milliseconds()))
	}
}
