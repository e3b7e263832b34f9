package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"umspanel/internal/metrics"
	"umspanel/internal/queue"
)

// MessageType tags login audit messages on the queue.
const MessageType = "login"

// Publisher hands audit events to the queue.
type Publisher struct {
	q queue.Queue
}

// NewPublisher creates a publisher on q.
func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{q: q}
}

// Publish enqueues evt. Failures are logged and counted, never returned,
// so auditing cannot break a login.
func (p *Publisher) Publish(ctx context.Context, evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		log.Printf("audit encode failed: %v", err)
		metrics.AuditEvent("failed")
		return
	}
	msg := queue.Message{Type: MessageType, Body: body}

	if mem, ok := p.q.(*queue.InMemory); ok {
		err = mem.TryPublish(msg)
	} else {
		err = p.q.Publish(ctx, msg)
	}
	if err != nil {
		log.Printf("audit publish failed: %v", err)
		metrics.AuditEvent("dropped")
		return
	}
	metrics.AuditEvent("published")
}

// Run stores every audit message from msgs until the channel closes.
func Run(ctx context.Context, msgs <-chan queue.Message, repo *Repository) {
	for msg := range msgs {
		if msg.Type != MessageType {
			continue
		}
		var evt Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("audit decode failed: %v", err)
			metrics.AuditEvent("failed")
			continue
		}
		if _, err := repo.Insert(ctx, evt); err != nil {
			log.Printf("audit insert %s failed: %v", evt.ID, err)
			metrics.AuditEvent("failed")
			continue
		}
		metrics.AuditEvent("stored")
	}
}
