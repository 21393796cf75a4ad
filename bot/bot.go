package bot

import (
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"kudos/bot/features/admin"
	"kudos/bot/features/balance"
	"kudos/bot/features/stats"
	"kudos/bot/features/transfer"
	"kudos/bot/features/vote"
	"kudos/service"
	"kudos/session"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	AnnounceChannelID string
	AdminIDs          []int64
	ScoreboardSize    int
	HistoryPageSize   int
	ImproveReasons    bool
}

// IsAdmin reports whether the member may run admin commands
func (c Config) IsAdmin(discordID int64) bool {
	return slices.Contains(c.AdminIDs, discordID)
}

// InteractionRecorder counts handled interactions by kind
type InteractionRecorder interface {
	RecordInteraction(interactionType string)
}

// Deps are the services and session flows the bot dispatches to
type Deps struct {
	Ledger   service.LedgerService
	Seasons  service.SeasonService
	Votes    service.VoteService
	Transfer *session.TransferFlow
	Vote     *session.VoteFlow
	Metrics  InteractionRecorder
}

type Bot struct {
	config  Config
	session *discordgo.Session
	ledger  service.LedgerService
	metrics InteractionRecorder

	transferFeature *transfer.Feature
	voteFeature     *vote.Feature
	balanceFeature  *balance.Feature
	statsFeature    *stats.Feature
	adminFeature    *admin.Feature
}

// NewSession creates an unopened Discord session so collaborators such as
// the notifier can be built before the bot starts
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
	return dg, nil
}

// New wires the features, opens the websocket and registers slash commands
func New(config Config, dg *discordgo.Session, deps Deps) (*Bot, error) {
	bot := &Bot{
		config:          config,
		session:         dg,
		ledger:          deps.Ledger,
		metrics:         deps.Metrics,
		transferFeature: transfer.New(deps.Transfer, config.ImproveReasons),
		voteFeature:     vote.New(deps.Vote),
		balanceFeature:  balance.New(deps.Ledger, deps.Seasons, config.HistoryPageSize),
		statsFeature:    stats.New(deps.Ledger, deps.Seasons, deps.Votes, config.ScoreboardSize),
		adminFeature:    admin.New(deps.Ledger),
	}

	dg.AddHandler(bot.handleInteraction)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guild_id", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}
