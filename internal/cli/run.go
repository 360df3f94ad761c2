package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ocular/internal/bot"
	"github.com/mesh-intelligence/ocular/internal/config"
	"github.com/mesh-intelligence/ocular/internal/logging"
	"github.com/mesh-intelligence/ocular/internal/metrics"
	"github.com/mesh-intelligence/ocular/internal/sqlite"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve slash commands",
		Long: "Open the database, register the slash commands, and serve them until\n" +
			"interrupted. The bot token comes from OCULAR_DISCORD_TOKEN or TOKEN.",
		Args: cobra.NoArgs,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, dataDir, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateDiscord(); err != nil {
		return userError(err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return userError(err)
	}

	logger := logging.New(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	logging.InstallDiscordgo(logger.Handler())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	store := sqlite.NewBackend()
	if err := store.Attach(ctx, cfg.Store(dataDir)); err != nil {
		return sysError(fmt.Errorf("attach store: %w", err))
	}
	defer func() {
		if err := store.Detach(); err != nil {
			logger.Error("error closing store", tint.Err(err))
		}
	}()
	logger.Info("store attached", "data_dir", dataDir)

	session, err := newSession(cfg, level)
	if err != nil {
		return sysError(err)
	}
	appID, err := applicationID(session, cfg)
	if err != nil {
		return sysError(err)
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Listen != "" {
		recorder = metrics.NewRecorder()
		go func() {
			if err := recorder.Serve(ctx, cfg.Metrics.Listen, logging.Named(logger, "metrics")); err != nil {
				logger.Error("metrics server failed", tint.Err(err))
				stop()
			}
		}()
	}

	b := bot.New(session, store, bot.Options{
		ApplicationID: appID,
		GuildID:       cfg.Discord.GuildID,
		AdminRoleID:   cfg.Discord.AdminRoleID,
		ReplyTTL:      cfg.Discord.ReplyTTL,
		Logger:        logging.Named(logger, "bot"),
		Metrics:       recorder,
	})
	if err := b.Start(); err != nil {
		session.Close()
		return sysError(err)
	}
	if cfg.Discord.AdminRoleID == "" {
		logger.Warn("discord.admin_role_id is not set; admin commands are disabled")
	}
	logger.Info("bot is running", "application_id", appID)

	<-ctx.Done()
	logger.Info("shutting down")
	if err := b.Close(); err != nil {
		logger.Error("error closing discord session", tint.Err(err))
	}
	return nil
}

// newSession builds the gateway session. discordgo's own log level follows
// ours but never drops below warnings.
func newSession(cfg *config.Config, level slog.Level) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.StateEnabled = false
	session.LogLevel = discordgo.LogWarning
	if level <= slog.LevelDebug {
		session.LogLevel = discordgo.LogDebug
	}
	return session, nil
}

// applicationID returns the configured application id, falling back to the
// bot user's id, which Discord uses as the application id for bots.
func applicationID(session *discordgo.Session, cfg *config.Config) (string, error) {
	if cfg.Discord.ApplicationID != "" {
		return cfg.Discord.ApplicationID, nil
	}
	me, err := session.User("@me")
	if err != nil {
		return "", fmt.Errorf("looking up bot user: %w", err)
	}
	return me.ID, nil
}

