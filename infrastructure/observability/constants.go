package observability

// MetricPrefix namespaces every instrument
const MetricPrefix = "wagerbot"

// Metric names
const (
	GamesStartedTotal  = MetricPrefix + ".games.started_total"
	GamesResolvedTotal = MetricPrefix + ".games.resolved_total"

	SessionsActive       = MetricPrefix + ".sessions.active"
	SessionsExpiredTotal = MetricPrefix + ".sessions.expired_total"

	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelGame      = "game"
	LabelOutcome   = "outcome"
	LabelPolicy    = "policy"
	LabelType      = "type"
	LabelEventType = "event_type"
)
