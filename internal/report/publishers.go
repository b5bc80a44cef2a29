package report

import (
	"context"

	"booking-warden/internal/models"
)

type Publisher interface {
	Name() string
	Publish(ctx context.Context, d Digest) error
}

type PostClient interface {
	CreatePost(ctx context.Context, token string, post models.PostRequest) error
}

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// PostPublisher delivers the digest as a Heynabo group post.
type PostPublisher struct {
	Client  PostClient
	Tokens  TokenSource
	GroupID string
	Public  bool
}

func (p *PostPublisher) Name() string { return "heynabo" }

func (p *PostPublisher) Publish(ctx context.Context, d Digest) error {
	token, err := p.Tokens.Token(ctx)
	if err != nil {
		return err
	}
	return p.Client.CreatePost(ctx, token, models.PostRequest{
		Headline: d.Headline(),
		Text:     d.Body(),
		GroupID:  p.GroupID,
		Public:   p.Public,
	})
}

type EventProducer interface {
	PublishViolations(ctx context.Context, events []models.ViolationEvent) error
}

// EventPublisher emits one violation event per block.
type EventPublisher struct {
	Producer EventProducer
}

func (p *EventPublisher) Name() string { return "kafka" }

func (p *EventPublisher) Publish(ctx context.Context, d Digest) error {
	events := make([]models.ViolationEvent, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		events = append(events, models.ViolationEvent{
			RunID:      d.RunID,
			UnitID:     b.UnitID,
			UnitLabel:  b.Label,
			Messages:   b.Messages,
			DetectedAt: d.Date,
		})
	}
	return p.Producer.PublishViolations(ctx, events)
}
