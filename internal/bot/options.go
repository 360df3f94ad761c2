package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// options indexes the top-level options of a slash command by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// str returns a trimmed string option, or "" when it is absent or of another
// type. discordgo's StringValue panics on a type mismatch.
func (o options) str(name string) string {
	opt, found := o[name]
	if !found || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	v, _ := opt.Value.(string)
	return strings.TrimSpace(v)
}

// int returns an integer option. Integers arrive as JSON numbers.
func (o options) int(name string) (int64, bool) {
	opt, found := o[name]
	if !found || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// focused returns the option the user is typing in during autocomplete.
func (o options) focused() *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// splitNames splits a comma-separated list of item names, dropping blanks.
func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// invoker returns the user who triggered the interaction.
func invoker(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// externalID parses a Discord snowflake into the stored integer id.
func externalID(u *discordgo.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("interaction has no user")
	}
	id, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing user id %q: %w", u.ID, err)
	}
	return id, nil
}
