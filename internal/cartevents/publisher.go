// Package cartevents publishes cart mutations to Pub/Sub.
package cartevents

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/pkg/logger"
	"github.com/google/uuid"
)

const (
	EventVersion = 1
	EventType    = "cart.changed"

	defaultPublishTimeout = 5 * time.Second
)

// Envelope is the stable message body published for every cart change.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// ChangedEvent is the envelope data for EventType.
type ChangedEvent struct {
	Kind      string `json:"kind"`
	Identity  string `json:"identity"`
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
	ItemCount int    `json:"itemCount"`
	Total     string `json:"total"`
	Persisted bool   `json:"persisted"`
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type Options struct {
	Logger  *logger.Logger
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
}

// Publisher is a cart.Observer that forwards mutations. Publishing is best-effort:
// failures are logged and never reach the cart.
type Publisher struct {
	pub     publisher
	logg    *logger.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

// NewPublisher wraps a Pub/Sub topic publisher. A nil topic yields a publisher that
// drops every change.
func NewPublisher(topic *gcppubsub.Publisher, opts Options) *Publisher {
	var pub publisher
	if topic != nil {
		pub = &gcpPublisher{Publisher: topic}
	}
	return newPublisher(pub, opts)
}

func newPublisher(pub publisher, opts Options) *Publisher {
	p := &Publisher{
		pub:     pub,
		logg:    opts.Logger,
		timeout: opts.Timeout,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if p.logg == nil {
		p.logg = logger.Nop()
	}
	if p.timeout <= 0 {
		p.timeout = defaultPublishTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

func (p *Publisher) CartChanged(ctx context.Context, change cart.Change) {
	if p == nil || p.pub == nil || change.Kind == cart.ChangeLoad {
		return
	}
	msg, eventID, err := p.message(change)
	if err != nil {
		p.logg.Error(ctx, "cartevents.encode_failed", err)
		return
	}
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"event_id": eventID,
		"kind":     string(change.Kind),
	})

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		p.logg.Error(logCtx, "cartevents.publish_failed", errors.New("publisher returned nil result"))
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		p.logg.Error(logCtx, "cartevents.publish_failed", err)
		return
	}
	p.logg.Debug(logCtx, "cartevents.published")
}

func (p *Publisher) message(change cart.Change) (*gcppubsub.Message, string, error) {
	data, err := json.Marshal(ChangedEvent{
		Kind:      string(change.Kind),
		Identity:  change.Identity,
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		ItemCount: change.ItemCount,
		Total:     change.Total.StringFixed(2),
		Persisted: change.Err == nil,
	})
	if err != nil {
		return nil, "", err
	}
	envelope := Envelope{
		Version:    EventVersion,
		EventID:    p.newID(),
		OccurredAt: p.now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", err
	}
	return &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":    envelope.EventID,
			"event_type":  EventType,
			"change_kind": string(change.Kind),
			"created_at":  envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}, envelope.EventID, nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
