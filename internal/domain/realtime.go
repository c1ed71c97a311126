package domain

import "context"

// Change feed topics.
const (
	TopicEvents    = "events"
	TopicEmployees = "employees"
)

// RequestTopic is the change feed topic of a single booking request.
func RequestTopic(title string) string {
	return "requests/" + title
}

// ChangeFeed delivers document changes to live subscribers.
// Subscribe returns a channel of encoded snapshots and a function that ends the subscription.
type ChangeFeed interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic string) (<-chan []byte, func())
}
