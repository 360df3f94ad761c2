package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// invocation carries one slash command call to its handler.
type invocation struct {
	interaction *discordgo.Interaction
	user        *discordgo.User
	opts        options
}

type handlerFunc func(ctx context.Context, inv invocation) (reply, error)

// completer names the source of autocomplete choices for an option.
type completer int

const (
	completeExpansion completer = iota + 1
	completeMount
	completeUser
)

// command binds a slash command definition to its handler.
type command struct {
	def      *discordgo.ApplicationCommand
	admin    bool
	run      handlerFunc
	complete map[string]completer
}

func stringOption(name, description string, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     true,
		Autocomplete: autocomplete,
	}
}

func categoryOption(description string) *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(types.Categories))
	for _, c := range types.Categories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "category",
		Description: description,
		Choices:     choices,
	}
}

// commandTable lists every slash command the bot serves.
func (b *Bot) commandTable() []command {
	minResults := 1.0
	mountPair := map[string]completer{"expansion": completeExpansion, "name": completeMount}

	return []command{
		{
			def: &discordgo.ApplicationCommand{Name: "ocular", Description: "Confirm the bot is responsive"},
			run: b.handleOcular,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "addme",
				Description: "Add yourself to the bot's user list",
				Options:     []*discordgo.ApplicationCommandOption{stringOption("name", "Name to give yourself in the database", false)},
			},
			run: b.handleAddMe,
		},
		{
			def: &discordgo.ApplicationCommand{Name: "userlist", Description: "List users in the database"},
			run: b.handleUserList,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "mountlist",
				Description: "List available mount names",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Expansion to list mounts from", true),
					categoryOption("Only list trials or raids"),
				},
			},
			run:      b.handleMountList,
			complete: map[string]completer{"expansion": completeExpansion},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "addmount",
				Description: "Add mounts to your list",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("name", "Mount name, or several separated by commas", true),
				},
			},
			run:      b.handleAddMount,
			complete: mountPair,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "removemount",
				Description: "Remove mounts from your list",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("name", "Mount name, or several separated by commas", true),
				},
			},
			run:      b.handleRemoveMount,
			complete: mountPair,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "mymounts",
				Description: "View your mounts",
				Options:     []*discordgo.ApplicationCommandOption{stringOption("expansion", "Expansion to list mounts from", true)},
			},
			run:      b.handleMyMounts,
			complete: map[string]completer{"expansion": completeExpansion},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "mostneeded",
				Description: "Display the top n most needed mounts",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "n",
					Description: "Number of results to output",
					Required:    true,
					MinValue:    &minResults,
					MaxValue:    maxNeededRows,
				}},
			},
			run: b.handleMostNeeded,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "adminaddmount",
				Description: "(Admin only) Add mounts for a user",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("mount_name", "Mount name, or several separated by commas", true),
					stringOption("user_name", "User to add mounts for", true),
				},
			},
			admin: true,
			run:   b.handleAdminAddMount,
			complete: map[string]completer{
				"expansion": completeExpansion, "mount_name": completeMount, "user_name": completeUser,
			},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "adminremovemount",
				Description: "(Admin only) Remove mounts from a user",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("mount_name", "Mount name, or several separated by commas", true),
					stringOption("user_name", "User to remove mounts from", true),
				},
			},
			admin: true,
			run:   b.handleAdminRemoveMount,
			complete: map[string]completer{
				"expansion": completeExpansion, "mount_name": completeMount, "user_name": completeUser,
			},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "adminusermounts",
				Description: "(Admin only) View another user's mounts",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("user_name", "User to check mounts for", true),
					stringOption("expansion", "Expansion to list mounts from", true),
				},
			},
			admin:    true,
			run:      b.handleAdminUserMounts,
			complete: map[string]completer{"expansion": completeExpansion, "user_name": completeUser},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "dbcreatemount",
				Description: "(Admin only) Create a new mount in the database",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("name", "Mount name to create", false),
					categoryOption("Trial or raid (default trial)"),
				},
			},
			admin:    true,
			run:      b.handleDBCreateMount,
			complete: map[string]completer{"expansion": completeExpansion},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "dbdeletemount",
				Description: "(Admin only) Delete a mount from the database",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("name", "Mount name to delete", true),
				},
			},
			admin:    true,
			run:      b.handleDBDeleteMount,
			complete: mountPair,
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "dbrenamemount",
				Description: "(Admin only) Rename a mount in the database",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expansion", "Mount expansion", true),
					stringOption("from_name", "Mount name to change", true),
					stringOption("to_name", "Mount name to assign", false),
				},
			},
			admin:    true,
			run:      b.handleDBRenameMount,
			complete: map[string]completer{"expansion": completeExpansion, "from_name": completeMount},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "dbrenameuser",
				Description: "(Admin only) Change the name of a user in the database",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("from_name", "User name to change", true),
					stringOption("to_name", "User name to assign", false),
				},
			},
			admin:    true,
			run:      b.handleDBRenameUser,
			complete: map[string]completer{"from_name": completeUser},
		},
		{
			def: &discordgo.ApplicationCommand{
				Name:        "dbdeleteuser",
				Description: "(Admin only) Delete a user from the database",
				Options:     []*discordgo.ApplicationCommandOption{stringOption("name", "Name of user to delete", true)},
			},
			admin:    true,
			run:      b.handleDBDeleteUser,
			complete: map[string]completer{"name": completeUser},
		},
	}
}
