package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lumina-be/internal/pkg/logger"
	"lumina-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "LUMINA_EVENTS"
	subjectPrefix = "lumina.events"
)

// Publisher sends events to a JetStream stream.
type Publisher struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log logger.ILogger
}

var _ events.Publisher = (*Publisher)(nil)

// envelope is what lands on the wire; subscribers get type and time
// without having to look at the subject.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("lumina-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		// NATS may still be starting; publishing retries on its own.
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{
			"stream": streamName,
			"error":  err.Error(),
		})
	}

	return &Publisher{nc: nc, js: js, log: log}, nil
}

func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, eventType)
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
