package observability

// Metric name prefixes
const (
	MetricPrefix = "kudos"
)

// Metric names
const (
	// Discord metrics
	InteractionsTotal = MetricPrefix + ".discord.interactions_total"

	// Ledger metrics
	TransfersTotal        = MetricPrefix + ".ledger.transfers_total"
	KudosTransferredTotal = MetricPrefix + ".ledger.kudos_transferred_total"
	SeasonChangesTotal    = MetricPrefix + ".ledger.season_changes_total"
	UsersRegisteredTotal  = MetricPrefix + ".ledger.users_registered_total"

	// Vote metrics
	VotesTotal = MetricPrefix + ".votes.recorded_total"

	// Session metrics
	SessionOutcomesTotal = MetricPrefix + ".sessions.outcomes_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelFlow      = "flow"
	LabelOutcome   = "outcome"
	LabelChanged   = "changed"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Interaction types for Discord
const (
	InteractionTypeCommand   = "command"
	InteractionTypeComponent = "component"
	InteractionTypeModal     = "modal"
)

// Season change types
const (
	SeasonChangeActivated   = "activated"
	SeasonChangeDeactivated = "deactivated"
)
