package models

// ScoreboardEntry is a member's received total for a scoreboard listing
type ScoreboardEntry struct {
	DiscordID     int64
	Username      string
	TotalReceived int64
}

// TransferSummary aggregates a member's transfer activity within a season
type TransferSummary struct {
	TotalGiven    int64
	TotalReceived int64
	GivenCount    int
	ReceivedCount int
}
