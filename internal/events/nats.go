// Package events publishes post lifecycle notifications on NATS.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

type Type string

const (
	PostCreated    Type = "created"
	PostDeleted    Type = "deleted"
	PostLiked      Type = "liked"
	PostUnliked    Type = "unliked"
	CommentAdded   Type = "comment_added"
	CommentRemoved Type = "comment_removed"
)

// SubjectPrefix is prepended to the event type to build the NATS subject, e.g. "posts.liked".
const SubjectPrefix = "posts."

type Event struct {
	Type      Type      `json:"type"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CommentID string    `json:"comment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Event) Subject() string { return SubjectPrefix + string(e.Type) }

type NatsPublisher struct {
	Conn   *nats.Conn
	Logger *slog.Logger
}

func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("devconnector-api"), nats.MaxReconnects(-1))
}

func NewNatsPublisher(conn *nats.Conn, logger *slog.Logger) *NatsPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NatsPublisher{Conn: conn, Logger: logger}
}

// Publish is fire-and-forget: a failed publish is logged and never fails the request.
func (p *NatsPublisher) Publish(_ context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.Logger.Warn("event encode failed", "type", e.Type, "error", err)
		return
	}
	if err := p.Conn.Publish(e.Subject(), payload); err != nil {
		p.Logger.Warn("event publish failed", "subject", e.Subject(), "post_id", e.PostID, "error", err)
	}
}

// Subscribe delivers every post event to handler until the subscription is drained.
func Subscribe(conn *nats.Conn, handler func(Event)) (*nats.Subscription, error) {
	return conn.Subscribe(SubjectPrefix+"*", func(msg *nats.Msg) {
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return
		}
		handler(e)
	})
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
