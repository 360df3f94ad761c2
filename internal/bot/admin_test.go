package bot

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optList = []*discordgo.ApplicationCommandInteractionDataOption

func TestAdminSetMounts(t *testing.T) {
	tests := []struct {
		name    string
		command string
		opts    optList
		want    string
		wantHas []string
	}{
		{
			name:    "add for another user",
			command: "adminaddmount",
			opts:    optList{strOpt("expansion", arr), strOpt("mount_name", "ifrit, titan"), strOpt("user_name", "bob")},
			want:    "Added `a realm reborn` mount `ifrit`, `titan` for `bob`",
			wantHas: []string{"ifrit", "titan"},
		},
		{
			name:    "remove from another user",
			command: "adminremovemount",
			opts:    optList{strOpt("expansion", arr), strOpt("mount_name", "ifrit"), strOpt("user_name", "bob")},
			want:    "Removed `a realm reborn` mount `ifrit` from `bob`",
			wantHas: []string{},
		},
		{
			name:    "unknown user",
			command: "adminaddmount",
			opts:    optList{strOpt("expansion", arr), strOpt("mount_name", "ifrit"), strOpt("user_name", "carol")},
			want:    "`carol` isn't a valid user name in my database.",
			wantHas: []string{},
		},
		{
			name:    "unknown mount",
			command: "adminaddmount",
			opts:    optList{strOpt("expansion", arr), strOpt("mount_name", "shiva"), strOpt("user_name", "bob")},
			want:    "`shiva` isn't a valid `a realm reborn` mount name in my database.",
			wantHas: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			tb.register(t, "bob", bobID)

			resp := tb.runAdmin(t, tt.command, tt.opts...)
			assert.Equal(t, tt.want, resp.Data.Content)

			has, err := tb.store.Status().ListOwned(context.Background(), 1002, arr, true)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHas, has)
		})
	}
}

func TestAdminUserMounts(t *testing.T) {
	tb := newTestBot(t, Options{})
	tb.register(t, "bob", bobID)
	tb.run(t, bobID, "addmount", strOpt("expansion", arr), strOpt("name", "titan"))

	resp := tb.runAdmin(t, "adminusermounts", strOpt("user_name", "bob"), strOpt("expansion", arr))
	require.Len(t, resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	assert.Equal(t, "A Realm Reborn mounts for `bob`", embed.Title)
	assert.Equal(t, " - titan", embed.Fields[0].Value)
	assert.Equal(t, " - ifrit", embed.Fields[1].Value)
	assert.True(t, isEphemeral(resp))

	resp = tb.runAdmin(t, "adminusermounts", strOpt("user_name", "carol"), strOpt("expansion", arr))
	assert.Equal(t, noUserNamed("carol"), resp.Data.Content)
}

func TestDBCreateMount(t *testing.T) {
	tests := []struct {
		name string
		opts optList
		want string
	}{
		{
			name: "creates a trial",
			opts: optList{strOpt("expansion", arr), strOpt("name", "garuda")},
			want: "Created `a realm reborn` mount `garuda`",
		},
		{
			name: "duplicate name",
			opts: optList{strOpt("expansion", hw), strOpt("name", "ifrit")},
			want: msgMountTaken,
		},
		{
			name: "blank name",
			opts: optList{strOpt("expansion", arr), strOpt("name", " ")},
			want: msgBlankName,
		},
		{
			name: "unknown expansion",
			opts: optList{strOpt("expansion", "nope"), strOpt("name", "garuda")},
			want: noExpansion("nope"),
		},
		{
			name: "unknown category",
			opts: optList{strOpt("expansion", arr), strOpt("name", "garuda"), strOpt("category", "dungeon")},
			want: "`dungeon` isn't a mount category.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			resp := tb.runAdmin(t, "dbcreatemount", tt.opts...)
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestDBCreateMount_NewMountIsNeeded(t *testing.T) {
	tb := newTestBot(t, Options{})
	tb.register(t, "bob", bobID)

	tb.runAdmin(t, "dbcreatemount", strOpt("expansion", arr), strOpt("name", "garuda"))
	need, err := tb.store.Status().ListOwned(context.Background(), 1002, arr, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"garuda", "ifrit", "titan"}, need)
}

func TestDBDeleteMount(t *testing.T) {
	tests := []struct {
		name string
		opts optList
		want string
	}{
		{
			name: "deletes the mount",
			opts: optList{strOpt("expansion", arr), strOpt("name", "ifrit")},
			want: "Deleted `a realm reborn` mount `ifrit` from the database.",
		},
		{
			name: "unknown mount",
			opts: optList{strOpt("expansion", arr), strOpt("name", "garuda")},
			want: msgNoSuchMount,
		},
		{
			name: "mount of another expansion",
			opts: optList{strOpt("expansion", hw), strOpt("name", "ifrit")},
			want: noExpansionMount(hw, "ifrit"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			resp := tb.runAdmin(t, "dbdeletemount", tt.opts...)
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestDBRenameMount(t *testing.T) {
	tests := []struct {
		name string
		opts optList
		want string
	}{
		{
			name: "renames the mount",
			opts: optList{strOpt("expansion", arr), strOpt("from_name", "ifrit"), strOpt("to_name", "ifrit ex")},
			want: "Renamed `a realm reborn` mount `ifrit` to `ifrit ex`.",
		},
		{
			name: "unknown mount",
			opts: optList{strOpt("expansion", arr), strOpt("from_name", "garuda"), strOpt("to_name", "x")},
			want: noMountNamed("garuda"),
		},
		{
			name: "target taken",
			opts: optList{strOpt("expansion", arr), strOpt("from_name", "ifrit"), strOpt("to_name", "titan")},
			want: mountNameTaken("titan"),
		},
		{
			name: "blank target",
			opts: optList{strOpt("expansion", arr), strOpt("from_name", "ifrit"), strOpt("to_name", "")},
			want: msgBlankName,
		},
		{
			name: "mount of another expansion",
			opts: optList{strOpt("expansion", hw), strOpt("from_name", "ifrit"), strOpt("to_name", "x")},
			want: noExpansionMount(hw, "ifrit"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			resp := tb.runAdmin(t, "dbrenamemount", tt.opts...)
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestDBRenameUser(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{name: "renames the user", from: "bob", to: "robert", want: "User name `bob` changed to `robert`."},
		{name: "unknown user", from: "carol", to: "x", want: noUserNamed("carol")},
		{name: "target taken", from: "bob", to: "alice", want: userNameTaken("alice")},
		{name: "same name", from: "bob", to: "bob", want: userNameTaken("bob")},
		{name: "blank target", from: "bob", to: "", want: msgBlankName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			tb.register(t, "alice", aliceID)
			tb.register(t, "bob", bobID)
			resp := tb.runAdmin(t, "dbrenameuser", strOpt("from_name", tt.from), strOpt("to_name", tt.to))
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestDBDeleteUser(t *testing.T) {
	tb := newTestBot(t, Options{})
	tb.register(t, "bob", bobID)

	resp := tb.runAdmin(t, "dbdeleteuser", strOpt("name", "bob"))
	assert.Equal(t, "User name `bob` deleted.", resp.Data.Content)

	resp = tb.runAdmin(t, "dbdeleteuser", strOpt("name", "bob"))
	assert.Equal(t, noUserNamed("bob"), resp.Data.Content)

	// The account can register again.
	tb.register(t, "bob", bobID)
}
