package events

// Topic constants for domain events emitted by the engine.
const (
	TopicSaleCommitted = "sale.committed"
	TopicSessionOpened = "session.opened"
	TopicSessionClosed = "session.closed"
)

// DefaultTopics returns the canonical list of topics downstream consumers may
// subscribe to.
func DefaultTopics() []string {
	return []string{
		TopicSaleCommitted,
		TopicSessionOpened,
		TopicSessionClosed,
	}
}
