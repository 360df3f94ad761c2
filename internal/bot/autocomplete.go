package bot

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// maxChoices is Discord's limit on autocomplete suggestions.
const maxChoices = 25

// maxChoiceLength is Discord's limit on a choice name or value. One longer
// choice makes Discord reject the whole response.
const maxChoiceLength = 100

// handleAutocomplete suggests values for the option the user is typing in.
func (b *Bot) handleAutocomplete(i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	logger := b.logger.With("command", data.Name, "interaction_id", i.ID)

	opts := optionMap(data.Options)
	focused := opts.focused()
	var choices []*discordgo.ApplicationCommandOptionChoice
	if cmd, found := b.commands[data.Name]; found && focused != nil {
		ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
		defer cancel()

		typed, _ := focused.Value.(string)
		values, err := b.suggest(ctx, cmd.complete[focused.Name], opts)
		if err != nil {
			logger.Error("error building autocomplete choices", tint.Err(err))
		}
		choices = filterChoices(values, typed)
	}

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Error("error responding to autocomplete", tint.Err(err))
	}
}

// suggest lists every candidate value for an option.
func (b *Bot) suggest(ctx context.Context, kind completer, opts options) ([]string, error) {
	switch kind {
	case completeExpansion:
		return b.store.Items().ListExpansions(ctx)
	case completeMount:
		// Mount suggestions follow the expansion already chosen, if any.
		return b.store.Items().ListNames(ctx, opts.str("expansion"))
	case completeUser:
		return b.store.Users().ListNames(ctx)
	}
	return nil, nil
}

// filterChoices keeps values containing typed, case-insensitively, up to
// maxChoices. For comma lists only the segment after the last comma is
// matched, and earlier segments are kept in the suggestion. Suggestions
// longer than maxChoiceLength are dropped.
func filterChoices(values []string, typed string) []*discordgo.ApplicationCommandOptionChoice {
	prefix := ""
	if idx := strings.LastIndex(typed, ","); idx >= 0 {
		prefix = typed[:idx+1] + " "
		typed = typed[idx+1:]
	}
	needle := strings.ToLower(strings.TrimSpace(typed))

	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, v := range values {
		if len(choices) == maxChoices {
			break
		}
		if needle != "" && !strings.Contains(strings.ToLower(v), needle) {
			continue
		}
		value := prefix + v
		if utf8.RuneCountInString(value) > maxChoiceLength {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: value, Value: value})
	}
	return choices
}
