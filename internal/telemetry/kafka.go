// Package telemetry publishes optional run summaries and gate/interlock
// events to Kafka and MQTT, guarded by internal/breaker so a dead broker
// degrades a run to logging only instead of blocking it.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"nrgchamp/distilltwin/internal/breaker"
	"nrgchamp/distilltwin/internal/metrics"
)

// RunSummaryEvent is published to Kafka once a run (single mode, or
// one suite scenario) completes.
type RunSummaryEvent struct {
	RunID      uuid.UUID         `json:"runId"`
	Mode       string            `json:"mode"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Gate       metrics.GateStats `json:"gate"`
	TotalIAE   float64           `json:"totalIAE"`
}

// SummaryPublisher writes RunSummaryEvent to Kafka. A nil writer means
// telemetry is disabled (no KAFKA_BROKERS configured); Publish is then
// a no-op.
type SummaryPublisher struct {
	w   *kafka.Writer
	br  *breaker.Breaker
	log *slog.Logger
}

// NewSummaryPublisher builds a publisher, or a disabled one if brokers
// is empty.
func NewSummaryPublisher(brokers []string, topic string, log *slog.Logger) *SummaryPublisher {
	if len(brokers) == 0 {
		return &SummaryPublisher{log: log}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &SummaryPublisher{
		w:   w,
		br:  breaker.New("kafka-summary", breaker.Config{}, log),
		log: log,
	}
}

// Publish sends ev, tolerating and logging failures rather than
// propagating them to the caller: telemetry never fails a run.
func (p *SummaryPublisher) Publish(ctx context.Context, ev RunSummaryEvent) {
	if p.w == nil {
		return
	}
	if ev.RunID == uuid.Nil {
		ev.RunID = uuid.New()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("summary marshal failed", "err", err)
		return
	}
	err = p.br.Execute(ctx, func(ctx context.Context) error {
		return p.w.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ev.RunID.String()),
			Value: b,
			Time:  ev.FinishedAt,
		})
	})
	if err != nil {
		p.log.Warn("summary publish skipped", "err", err, "mode", ev.Mode)
	}
}

// Close releases the underlying writer, if any.
func (p *SummaryPublisher) Close() error {
	if p.w == nil {
		return nil
	}
	return p.w.Close()
}
