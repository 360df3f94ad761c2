package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/ocular/internal/metrics"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

func (b *Bot) handleAdminAddMount(ctx context.Context, inv invocation) (reply, error) {
	return b.setUserMounts(ctx, inv, true)
}

func (b *Bot) handleAdminRemoveMount(ctx context.Context, inv invocation) (reply, error) {
	return b.setUserMounts(ctx, inv, false)
}

// setUserMounts is setOwnMounts for a user named in the options.
func (b *Bot) setUserMounts(ctx context.Context, inv invocation, owned bool) (reply, error) {
	expansion := inv.opts.str("expansion")
	userName := inv.opts.str("user_name")
	names := splitNames(inv.opts.str("mount_name"))

	ext, err := b.store.Users().ResolveExternalID(ctx, userName)
	if errors.Is(err, types.ErrNotFound) {
		return rejected(fmt.Sprintf("`%s` isn't a valid user name in my database.", userName)), nil
	}
	if err != nil {
		return reply{}, err
	}

	valid, invalid, err := b.partitionNames(ctx, expansion, names)
	if err != nil {
		return reply{}, err
	}
	unresolved, err := b.store.Status().SetOwnership(ctx, ext, valid, owned)
	if err != nil {
		return reply{}, err
	}
	invalid = append(invalid, unresolved...)
	applied := without(valid, unresolved)

	var lines []string
	if len(applied) > 0 {
		if owned {
			lines = append(lines, fmt.Sprintf("Added `%s` mount %s for `%s`", expansion, quoted(applied), userName))
		} else {
			lines = append(lines, fmt.Sprintf("Removed `%s` mount %s from `%s`", expansion, quoted(applied), userName))
		}
	}
	for _, name := range invalid {
		lines = append(lines, fmt.Sprintf("`%s` isn't a valid `%s` mount name in my database.", name, expansion))
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

func (b *Bot) handleAdminUserMounts(ctx context.Context, inv invocation) (reply, error) {
	userName := inv.opts.str("user_name")
	expansion := inv.opts.str("expansion")
	if !types.IsValidExpansion(expansion) {
		return rejected(noExpansion(expansion)), nil
	}

	ext, err := b.store.Users().ResolveExternalID(ctx, userName)
	if errors.Is(err, types.ErrNotFound) {
		return rejected(noUserNamed(userName)), nil
	}
	if err != nil {
		return reply{}, err
	}

	have, need, err := b.ownedAndNeeded(ctx, ext, expansion)
	if err != nil {
		return reply{}, err
	}
	title := fmt.Sprintf("%s mounts for `%s`", types.ExpansionTitle(expansion), userName)
	return okEmbed(mountsEmbed(title, have, need)), nil
}

func (b *Bot) handleDBCreateMount(ctx context.Context, inv invocation) (reply, error) {
	item := types.Item{
		Name:      inv.opts.str("name"),
		Expansion: inv.opts.str("expansion"),
		Category:  inv.opts.str("category"),
	}
	_, err := b.store.Items().Create(ctx, item)
	switch {
	case errors.Is(err, types.ErrDuplicateItem):
		return rejected(msgMountTaken), nil
	case errors.Is(err, types.ErrInvalidName):
		return rejected(msgBlankName), nil
	case errors.Is(err, types.ErrUnknownExpansion):
		return rejected(noExpansion(item.Expansion)), nil
	case errors.Is(err, types.ErrInvalidCategory):
		return rejected(fmt.Sprintf("`%s` isn't a mount category.", item.Category)), nil
	case err != nil:
		return reply{}, err
	}
	return ok(fmt.Sprintf("Created `%s` mount `%s`", item.Expansion, item.Name)), nil
}

func (b *Bot) handleDBDeleteMount(ctx context.Context, inv invocation) (reply, error) {
	expansion := inv.opts.str("expansion")
	name := inv.opts.str("name")

	item, err := b.store.Items().Get(ctx, name)
	if errors.Is(err, types.ErrNotFound) {
		return rejected(msgNoSuchMount), nil
	}
	if err != nil {
		return reply{}, err
	}
	if item.Expansion != expansion {
		return rejected(noExpansionMount(expansion, name)), nil
	}

	if err := b.store.Items().Delete(ctx, name); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return rejected(msgNoSuchMount), nil
		}
		return reply{}, err
	}
	return ok(fmt.Sprintf("Deleted `%s` mount `%s` from the database.", expansion, name)), nil
}

func (b *Bot) handleDBRenameMount(ctx context.Context, inv invocation) (reply, error) {
	expansion := inv.opts.str("expansion")
	from := inv.opts.str("from_name")
	to := inv.opts.str("to_name")

	item, err := b.store.Items().Get(ctx, from)
	if errors.Is(err, types.ErrNotFound) {
		return rejected(noMountNamed(from)), nil
	}
	if err != nil {
		return reply{}, err
	}
	if item.Expansion != expansion {
		return rejected(noExpansionMount(expansion, from)), nil
	}

	err = b.store.Items().Rename(ctx, from, to)
	switch {
	case errors.Is(err, types.ErrNotFound):
		return rejected(noMountNamed(from)), nil
	case errors.Is(err, types.ErrDuplicateItem):
		return rejected(mountNameTaken(to)), nil
	case errors.Is(err, types.ErrInvalidName):
		return rejected(msgBlankName), nil
	case err != nil:
		return reply{}, err
	}
	return ok(fmt.Sprintf("Renamed `%s` mount `%s` to `%s`.", expansion, from, to)), nil
}

func (b *Bot) handleDBRenameUser(ctx context.Context, inv invocation) (reply, error) {
	from := inv.opts.str("from_name")
	to := inv.opts.str("to_name")

	err := b.store.Users().Rename(ctx, from, to)
	switch {
	case errors.Is(err, types.ErrNotFound):
		return rejected(noUserNamed(from)), nil
	case errors.Is(err, types.ErrDuplicateUser):
		return rejected(userNameTaken(to)), nil
	case errors.Is(err, types.ErrInvalidName):
		return rejected(msgBlankName), nil
	case err != nil:
		return reply{}, err
	}
	return ok(fmt.Sprintf("User name `%s` changed to `%s`.", from, to)), nil
}

func (b *Bot) handleDBDeleteUser(ctx context.Context, inv invocation) (reply, error) {
	name := inv.opts.str("name")

	err := b.store.Users().Delete(ctx, name)
	if errors.Is(err, types.ErrNotFound) {
		return rejected(noUserNamed(name)), nil
	}
	if err != nil {
		return reply{}, err
	}
	return ok(fmt.Sprintf("User name `%s` deleted.", name)), nil
}
