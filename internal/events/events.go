// Package events carries task-activity notifications out of the mutation
// path. Publishing is strictly best effort: a failed or slow delivery never
// fails the request that triggered it.
package events

import "context"

// Event types emitted by the task pipeline.
const (
	TypeTaskCreated  = "task_created"
	TypeTaskUpdated  = "task_updated"
	TypeTaskDeleted  = "task_deleted"
	TypeCommentAdded = "comment_added"
)

// Event is one activity notification.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Publisher delivers events to interested parties. Implementations must not
// block the caller and must not surface delivery failures; they log and drop.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Discard is a Publisher that drops every event. It stands in when no event
// backend is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}

// Fanout publishes each event to every wrapped publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, p := range f {
		p.Publish(ctx, event)
	}
}
