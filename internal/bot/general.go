package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mesh-intelligence/ocular/internal/metrics"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

// maxNeededRows caps /mostneeded so the embed fields stay under Discord's
// 1024 character limit.
const maxNeededRows = 25

func (b *Bot) handleOcular(_ context.Context, _ invocation) (reply, error) {
	r := ok(msgAlive)
	r.ephemeral = false
	return r, nil
}

func (b *Bot) handleAddMe(ctx context.Context, inv invocation) (reply, error) {
	name := inv.opts.str("name")
	if name == "" {
		return rejected(msgBlankName), nil
	}
	ext, err := externalID(inv.user)
	if err != nil {
		return reply{}, err
	}

	users := b.store.Users()
	if _, err := users.ResolveID(ctx, name); err == nil {
		return rejected(msgNameTaken), nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return reply{}, err
	}
	if _, err := users.ResolveByExternalID(ctx, ext); err == nil {
		return rejected(msgDiscordIDTaken), nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return reply{}, err
	}

	if _, err := users.Register(ctx, name, ext); err != nil {
		if errors.Is(err, types.ErrDuplicateUser) {
			return rejected(msgNameTaken), nil
		}
		return reply{}, err
	}
	return ok(fmt.Sprintf("You have been added as `%s` in my database.", name)), nil
}

func (b *Bot) handleUserList(ctx context.Context, _ invocation) (reply, error) {
	names, err := b.store.Users().ListNames(ctx)
	if err != nil {
		return reply{}, err
	}
	return okEmbed(&discordgo.MessageEmbed{
		Title:       "Users",
		Description: "List of users in the database: \n" + bulletList(names),
		Color:       embedColor,
	}), nil
}

func (b *Bot) handleMountList(ctx context.Context, inv invocation) (reply, error) {
	expansion := inv.opts.str("expansion")
	if !types.IsValidExpansion(expansion) {
		return rejected(noExpansion(expansion)), nil
	}
	items, err := b.store.Items().List(ctx, types.ItemFilter{
		Expansion: expansion,
		Category:  inv.opts.str("category"),
	})
	if err != nil {
		return reply{}, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return okEmbed(&discordgo.MessageEmbed{
		Title:       types.ExpansionTitle(expansion) + " mounts",
		Description: "Available mounts are: \n" + bulletList(names),
		Color:       embedColor,
	}), nil
}

func (b *Bot) handleAddMount(ctx context.Context, inv invocation) (reply, error) {
	return b.setOwnMounts(ctx, inv, true)
}

func (b *Bot) handleRemoveMount(ctx context.Context, inv invocation) (reply, error) {
	return b.setOwnMounts(ctx, inv, false)
}

// setOwnMounts flips the caller's flag for every listed mount of the chosen
// expansion and reports the names that are not mounts of that expansion.
func (b *Bot) setOwnMounts(ctx context.Context, inv invocation, owned bool) (reply, error) {
	expansion := inv.opts.str("expansion")
	names := splitNames(inv.opts.str("name"))
	ext, err := externalID(inv.user)
	if err != nil {
		return reply{}, err
	}

	valid, invalid, err := b.partitionNames(ctx, expansion, names)
	if err != nil {
		return reply{}, err
	}
	unresolved, err := b.store.Status().SetOwnership(ctx, ext, valid, owned)
	if errors.Is(err, types.ErrUnknownUser) {
		return rejected(msgUnknownUser), nil
	}
	if err != nil {
		return reply{}, err
	}
	invalid = append(invalid, unresolved...)
	applied := without(valid, unresolved)

	var lines []string
	if len(applied) > 0 {
		if owned {
			lines = append(lines, fmt.Sprintf("Added %s to your `%s` mounts.", quoted(applied), expansion))
		} else {
			lines = append(lines, fmt.Sprintf("Removed %s from your `%s` mounts.", quoted(applied), expansion))
		}
	}
	for _, name := range invalid {
		lines = append(lines, noExpansionMount(expansion, name))
	}
	if len(lines) == 0 {
		return rejected("Tell me which mounts, separated by commas."), nil
	}

	r := ok(strings.Join(lines, "\n"))
	if len(applied) == 0 {
		r.outcome = metrics.OutcomeRejected
	}
	return r, nil
}

func (b *Bot) handleMyMounts(ctx context.Context, inv invocation) (reply, error) {
	expansion := inv.opts.str("expansion")
	if !types.IsValidExpansion(expansion) {
		return rejected(noExpansion(expansion)), nil
	}
	ext, err := externalID(inv.user)
	if err != nil {
		return reply{}, err
	}

	have, need, err := b.ownedAndNeeded(ctx, ext, expansion)
	if errors.Is(err, types.ErrUnknownUser) {
		return rejected(msgUnknownUser), nil
	}
	if err != nil {
		return reply{}, err
	}

	embed := mountsEmbed(types.ExpansionTitle(expansion)+" mounts", have, need)
	embed.Image = &discordgo.MessageEmbedImage{URL: expansionImages[expansion]}
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: inv.user.AvatarURL("")}
	return reply{embed: embed, outcome: metrics.OutcomeOK}, nil
}

func (b *Bot) handleMostNeeded(ctx context.Context, inv invocation) (reply, error) {
	n, found := inv.opts.int("n")
	if !found || n < 1 {
		return rejected("Ask for at least one mount."), nil
	}
	if n > maxNeededRows {
		n = maxNeededRows
	}

	needed, err := b.store.Status().SummarizeMostNeeded(ctx)
	if err != nil {
		return reply{}, err
	}
	if int64(len(needed)) > n {
		needed = needed[:n]
	}

	embed := &discordgo.MessageEmbed{Title: "Most commonly needed mounts", Color: embedColor}
	if len(needed) == 0 {
		embed.Description = "Nobody needs any mounts."
		return okEmbed(embed), nil
	}

	expansions := make([]string, len(needed))
	mounts := make([]string, len(needed))
	counts := make([]string, len(needed))
	for i, row := range needed {
		expansions[i] = row.Expansion
		mounts[i] = row.Name
		counts[i] = strconv.Itoa(row.NeededCount)
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Expansion", Value: strings.Join(expansions, "\n"), Inline: true},
		{Name: "Mount", Value: strings.Join(mounts, "\n"), Inline: true},
		{Name: "Needed by", Value: strings.Join(counts, "\n"), Inline: true},
	}
	return okEmbed(embed), nil
}

// partitionNames splits names into mounts of expansion and everything else.
func (b *Bot) partitionNames(ctx context.Context, expansion string, names []string) (valid, invalid []string, err error) {
	valid, invalid = []string{}, []string{}
	if !types.IsValidExpansion(expansion) {
		return valid, names, nil
	}
	catalog, err := b.store.Items().ListNames(ctx, expansion)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]bool, len(catalog))
	for _, n := range catalog {
		known[n] = true
	}
	for _, n := range names {
		if known[n] {
			valid = append(valid, n)
		} else {
			invalid = append(invalid, n)
		}
	}
	return valid, invalid, nil
}

func (b *Bot) ownedAndNeeded(ctx context.Context, ext int64, expansion string) (have, need []string, err error) {
	have, err = b.store.Status().ListOwned(ctx, ext, expansion, true)
	if err != nil {
		return nil, nil, err
	}
	need, err = b.store.Status().ListOwned(ctx, ext, expansion, false)
	if err != nil {
		return nil, nil, err
	}
	return have, need, nil
}

// without returns names minus the entries of drop, keeping order.
func without(names, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := []string{}
	for _, n := range names {
		if !skip[n] {
			out = append(out, n)
		}
	}
	return out
}
