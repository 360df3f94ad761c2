package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mesh-intelligence/ocular/internal/metrics"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

// Canned replies.
const (
	msgAlive          = "We stand together!"
	msgUnknownUser    = "I don't have you in my database! Add yourself with `/addme`."
	msgNameTaken      = "I already have a user with this name in my database."
	msgDiscordIDTaken = "I already have a user with your discord ID in my database."
	msgMountTaken     = "I already have a mount with this name in my database."
	msgNoSuchMount    = "I don't have a mount with this name in my database."
	msgBlankName      = "Names can't be blank."
	msgNotAdmin       = "You don't have permission to use this command."
	msgNotInGuild     = "This command only works in a server."
	msgInternalError  = "sorry, something went wrong!"
)

// embedColor is Discord blurple.
const embedColor = 0x5865F2

// expansionImages are the banner images shown by /mymounts.
var expansionImages = map[string]string{
	types.ExpansionARealmReborn:   "https://lds-img.finalfantasyxiv.com/h/-/pnlEUJhVj0vMO7dtJ5psZ84Vvg.jpg",
	types.ExpansionHeavensward:    "https://lds-img.finalfantasyxiv.com/h/3/uN1BWnRvdTy5nT8izK6G4Hu3cI.jpg",
	types.ExpansionStormblood:     "https://lds-img.finalfantasyxiv.com/h/v/CBMATiZFo0BaxDrY2G483WScs4.jpg",
	types.ExpansionShadowbringers: "https://lds-img.finalfantasyxiv.com/h/m/B56bwbNBbqkA9UlbmcZ_BeWIL8.jpg",
	types.ExpansionEndwalker:      "https://lds-img.finalfantasyxiv.com/h/Q/YW-_Cq8HEN5QOH5PD5w9xF2-YI.jpg",
	types.ExpansionDawntrail:      "https://lds-img.finalfantasyxiv.com/h/Z/1Li39bwJmXi701FfGzRL_7LAZg.jpg",
}

// reply is what a command handler sends back.
type reply struct {
	content   string
	embed     *discordgo.MessageEmbed
	ephemeral bool
	outcome   string
}

func ok(content string) reply {
	return reply{content: content, ephemeral: true, outcome: metrics.OutcomeOK}
}

func rejected(content string) reply {
	return reply{content: content, ephemeral: true, outcome: metrics.OutcomeRejected}
}

func okEmbed(embed *discordgo.MessageEmbed) reply {
	return reply{embed: embed, ephemeral: true, outcome: metrics.OutcomeOK}
}

// response converts a reply into the interaction response payload.
func (r reply) response() *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: r.content}
	if r.embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.embed}
	}
	if r.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func noUserNamed(name string) string {
	return fmt.Sprintf("I don't have a user named `%s` in my database.", name)
}

func userNameTaken(name string) string {
	return fmt.Sprintf("I already have a user named `%s` in my database.", name)
}

func noMountNamed(name string) string {
	return fmt.Sprintf("I don't have a mount named `%s` in my database.", name)
}

func mountNameTaken(name string) string {
	return fmt.Sprintf("I already have a mount named `%s` in my database.", name)
}

func noExpansionMount(expansion, name string) string {
	return fmt.Sprintf("I don't have a `%s` mount named `%s` in my database.", expansion, name)
}

func noExpansion(expansion string) string {
	return fmt.Sprintf("I don't have a `%s` expansion in my database.", expansion)
}

// bulletList renders names one per line. An empty list renders as none.
func bulletList(names []string) string {
	if len(names) == 0 {
		return " - none"
	}
	return " - " + strings.Join(names, "\n - ")
}

// quoted renders names as a comma-separated list of code spans.
func quoted(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "`" + n + "`"
	}
	return strings.Join(parts, ", ")
}

// mountsEmbed renders the Have/Need view of one expansion.
func mountsEmbed(title string, have, need []string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Have", Value: bulletList(have), Inline: true},
			{Name: "Need", Value: bulletList(need), Inline: true},
		},
	}
}
