package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"kudos/config"
	"kudos/database"
	"kudos/events"
	"kudos/repository"
	"kudos/service"
)

const adminUsage = `usage:
  kudos season create <name> <default-balance> [description]
  kudos season activate|deactivate <id>
  kudos season list
  kudos question add <season-id> <text>
  kudos question enable|disable <id>
  kudos question list <season-id>
  kudos user approve|revoke <discord-id> [username]`

// RunAdmin executes an administrative subcommand directly against the
// database, without connecting to Discord
func RunAdmin(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", adminUsage)
	}

	cfg, err := config.LoadAdmin()
	if err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	defer eventBus.Wait()

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	cli := &adminCLI{
		seasons: service.NewSeasonService(uowFactory),
		votes:   service.NewVoteService(uowFactory),
		ledger: service.NewLedgerService(uowFactory, service.LedgerOptions{
			StartingBalance: cfg.StartingBalance,
			AutoApprove:     cfg.AutoApprove,
		}),
		out: out,
	}
	return cli.run(ctx, args)
}

type adminCLI struct {
	seasons service.SeasonService
	votes   service.VoteService
	ledger  service.LedgerService
	out     io.Writer
}

func (a *adminCLI) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%s", adminUsage)
	}

	switch args[0] {
	case "season":
		return a.season(ctx, args[1], args[2:])
	case "question":
		return a.question(ctx, args[1], args[2:])
	case "user":
		return a.user(ctx, args[1], args[2:])
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], adminUsage)
}

func (a *adminCLI) season(ctx context.Context, action string, args []string) error {
	switch action {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: kudos season create <name> <default-balance> [description]")
		}
		defaultBalance, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid default balance %q", args[1])
		}
		season, err := a.seasons.CreateSeason(ctx, args[0], defaultBalance, strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created season %d (%s), default balance %d\n", season.ID, season.Name, season.DefaultBalance)

	case "activate":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		season, err := a.seasons.Activate(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Activated season %d (%s), balances reset to %d\n", season.ID, season.Name, season.DefaultBalance)

	case "deactivate":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.seasons.Deactivate(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deactivated season %d\n", id)

	case "list":
		seasons, err := a.seasons.ListSeasons(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDEFAULT\tACTIVE")
		for _, s := range seasons {
			fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", s.ID, s.Name, s.DefaultBalance, s.Active)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown season command %q", action)
	}
	return nil
}

func (a *adminCLI) question(ctx context.Context, action string, args []string) error {
	switch action {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: kudos question add <season-id> <text>")
		}
		seasonID, err := parseID(args)
		if err != nil {
			return err
		}
		q, err := a.votes.CreateQuestion(ctx, seasonID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added question %d to season %d\n", q.ID, q.SeasonID)

	case "enable", "disable":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.votes.SetQuestionActive(ctx, id, action == "enable"); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Question %d %sd\n", id, action)

	case "list":
		seasonID, err := parseID(args)
		if err != nil {
			return err
		}
		questions, err := a.votes.ListQuestions(ctx, seasonID, false)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tACTIVE\tTEXT")
		for _, q := range questions {
			fmt.Fprintf(w, "%d\t%t\t%s\n", q.ID, q.Active, q.Text)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown question command %q", action)
	}
	return nil
}

func (a *adminCLI) user(ctx context.Context, action string, args []string) error {
	if action != "approve" && action != "revoke" {
		return fmt.Errorf("unknown user command %q", action)
	}
	discordID, err := parseID(args)
	if err != nil {
		return err
	}

	// Members approved before they ever used the bot are registered here
	username := strconv.FormatInt(discordID, 10)
	if len(args) > 1 {
		username = args[1]
	}
	if _, err := a.ledger.GetOrCreateUser(ctx, discordID, username); err != nil {
		return err
	}
	if err := a.ledger.ApproveUser(ctx, discordID, action == "approve"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %d %sd\n", discordID, action)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
