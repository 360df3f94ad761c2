// Package bot serves the Ocular slash commands over a Discord session. It
// parses options, calls the store, and formats replies; all state lives in
// the store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"

	"github.com/mesh-intelligence/ocular/internal/metrics"
	"github.com/mesh-intelligence/ocular/internal/sqlite"
)

// commandTimeout bounds the store work of one interaction.
const commandTimeout = 10 * time.Second

// Options configures a Bot.
type Options struct {
	// ApplicationID owns the slash commands. Required by Start.
	ApplicationID string

	// GuildID registers commands in one guild; empty registers globally.
	GuildID string

	// AdminRoleID gates the admin commands. Empty denies them to everyone.
	AdminRoleID string

	// ReplyTTL deletes ephemeral replies after this long. Zero keeps them.
	ReplyTTL time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Bot dispatches Discord interactions to command handlers.
type Bot struct {
	session Session
	store   *sqlite.Backend
	opts    Options
	logger  *slog.Logger

	commands map[string]command

	ctx     context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup
	remove  func()
}

// New returns a bot serving store over session. It does not connect.
func New(session Session, store *sqlite.Backend, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		session:  session,
		store:    store,
		opts:     opts,
		logger:   logger,
		commands: make(map[string]command),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, c := range b.commandTable() {
		b.commands[c.def.Name] = c
	}
	return b
}

// Definitions returns the slash command definitions in registration order.
func (b *Bot) Definitions() []*discordgo.ApplicationCommand {
	table := b.commandTable()
	defs := make([]*discordgo.ApplicationCommand, 0, len(table))
	for _, c := range table {
		defs = append(defs, c.def)
	}
	return defs
}

// Start installs the interaction handler, opens the session, and registers
// the slash commands.
func (b *Bot) Start() error {
	if b.opts.ApplicationID == "" {
		return errors.New("application id must not be empty")
	}
	b.remove = b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.opts.ApplicationID, b.opts.GuildID, b.Definitions())
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	b.logger.Info("registered commands", "count", len(registered), "guild_id", b.opts.GuildID)
	return nil
}

// Close stops pending reply deletions and closes the session.
func (b *Bot) Close() error {
	b.cancel()
	b.pending.Wait()
	if b.remove != nil {
		b.remove()
	}
	return b.session.Close()
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(i.Interaction)
}

// handleInteraction routes one interaction.
func (b *Bot) handleInteraction(i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(i)
	}
}

func (b *Bot) handleCommand(i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	user := invoker(i)
	logger := b.logger.With("command", data.Name, "interaction_id", i.ID)
	if user != nil {
		logger = logger.With("user", user.Username)
	}
	logger.Info("command invoked")

	start := time.Now()
	r := b.runCommand(logger, i, data, user)
	if b.opts.Metrics != nil {
		b.opts.Metrics.Observe(data.Name, r.outcome, time.Since(start))
	}

	if err := b.session.InteractionRespond(i, r.response()); err != nil {
		logger.Error("error responding to interaction", tint.Err(err))
		return
	}
	logger.Info("command done", "outcome", r.outcome)

	if r.ephemeral && b.opts.ReplyTTL > 0 {
		b.scheduleDelete(logger, i)
	}
}

// runCommand runs the handler and turns unexpected errors into the generic
// failure reply.
func (b *Bot) runCommand(logger *slog.Logger, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, user *discordgo.User) reply {
	cmd, found := b.commands[data.Name]
	if !found {
		logger.Warn("unknown command")
		return reply{content: msgInternalError, ephemeral: true, outcome: metrics.OutcomeError}
	}
	if cmd.admin {
		if i.Member == nil {
			return rejected(msgNotInGuild)
		}
		if b.opts.AdminRoleID == "" || !slices.Contains(i.Member.Roles, b.opts.AdminRoleID) {
			logger.Warn("admin command denied")
			return rejected(msgNotAdmin)
		}
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	r, err := cmd.run(ctx, invocation{interaction: i, user: user, opts: optionMap(data.Options)})
	if err != nil {
		logger.Error("command failed", tint.Err(err))
		return reply{content: msgInternalError, ephemeral: true, outcome: metrics.OutcomeError}
	}
	if r.outcome == metrics.OutcomeRejected {
		logger.Warn("command rejected", "reply", r.content)
	}
	return r
}

// scheduleDelete removes an ephemeral reply once ReplyTTL elapses. Close
// abandons deletions that have not fired yet.
func (b *Bot) scheduleDelete(logger *slog.Logger, i *discordgo.Interaction) {
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		timer := time.NewTimer(b.opts.ReplyTTL)
		defer timer.Stop()
		select {
		case <-b.ctx.Done():
			return
		case <-timer.C:
		}
		if err := b.session.InteractionResponseDelete(i); err != nil {
			logger.Warn("error deleting reply", tint.Err(err))
		}
	}()
}
