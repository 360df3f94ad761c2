// Package logging builds the slog loggers used across the bot and bridges
// discordgo's printf-style logger into slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// LoggerNameKey is the attribute naming the component that logged a record.
const LoggerNameKey = "logger"

// ParseLevel maps a config value to a slog level. Matching is case-insensitive.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
	return l, nil
}

// New returns a tint-backed logger writing to w.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// NewHandler returns the tint handler shared by every logger.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:     level,
		AddSource: true,
	})
}

// Named returns logger tagged with a component name.
func Named(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(LoggerNameKey, name)
}

var discordgoLevels = map[int]slog.Level{
	discordgo.LogDebug:         slog.LevelDebug,
	discordgo.LogError:         slog.LevelError,
	discordgo.LogWarning:       slog.LevelWarn,
	discordgo.LogInformational: slog.LevelInfo,
}

// DiscordgoLogger adapts handler to the signature of discordgo.Logger.
func DiscordgoLogger(ctx context.Context, handler slog.Handler) func(msgL, caller int, format string, args ...any) {
	log := slog.New(handler.WithAttrs([]slog.Attr{slog.String(LoggerNameKey, "discordgo")}))
	return func(msgL int, _ int, format string, args ...any) {
		level, ok := discordgoLevels[msgL]
		if !ok {
			level = slog.LevelInfo
		}
		log.LogAttrs(ctx, level, strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", ""))
	}
}

// InstallDiscordgo routes discordgo's package-level logger through handler.
func InstallDiscordgo(handler slog.Handler) {
	discordgo.Logger = DiscordgoLogger(context.Background(), handler)
}
