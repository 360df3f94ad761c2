package bot

import "github.com/bwmarrin/discordgo"

// Session is the part of *discordgo.Session the bot uses. Tests substitute a
// fake that records responses.
type Session interface {
	// Open creates a websocket connection to Discord.
	Open() error

	// Close closes the websocket connection to Discord.
	Close() error

	// AddHandler adds a gateway event handler and returns its remover.
	AddHandler(handler any) func()

	// ApplicationCommandBulkOverwrite replaces the registered slash commands.
	ApplicationCommandBulkOverwrite(
		appID string,
		guildID string,
		commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)

	// InteractionRespond sends the initial response to an interaction.
	InteractionRespond(
		interaction *discordgo.Interaction,
		resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption,
	) error

	// InteractionResponseDelete deletes the initial response.
	InteractionResponseDelete(
		interaction *discordgo.Interaction,
		options ...discordgo.RequestOption,
	) error
}

var _ Session = (*discordgo.Session)(nil)
