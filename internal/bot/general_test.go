package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOcular(t *testing.T) {
	tb := newTestBot(t, Options{})
	resp := tb.run(t, aliceID, "ocular")
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, msgAlive, resp.Data.Content)
	assert.False(t, isEphemeral(resp))
}

func TestAddMe(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, tb *testBot)
		userID string
		as     string
		want   string
	}{
		{
			name:   "registers the caller",
			userID: aliceID,
			as:     "alice",
			want:   "You have been added as `alice` in my database.",
		},
		{
			name:   "blank name",
			userID: aliceID,
			as:     "   ",
			want:   msgBlankName,
		},
		{
			name:   "name taken by another account",
			setup:  func(t *testing.T, tb *testBot) { tb.register(t, "alice", aliceID) },
			userID: bobID,
			as:     "alice",
			want:   msgNameTaken,
		},
		{
			name:   "account already registered",
			setup:  func(t *testing.T, tb *testBot) { tb.register(t, "alice", aliceID) },
			userID: aliceID,
			as:     "alice2",
			want:   msgDiscordIDTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			if tt.setup != nil {
				tt.setup(t, tb)
			}
			resp := tb.run(t, tt.userID, "addme", strOpt("name", tt.as))
			assert.Equal(t, tt.want, resp.Data.Content)
			assert.True(t, isEphemeral(resp))
		})
	}
}

func TestUserList(t *testing.T) {
	tb := newTestBot(t, Options{})

	resp := tb.run(t, aliceID, "userlist")
	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Description, " - none")

	tb.register(t, "bob", bobID)
	tb.register(t, "alice", aliceID)
	resp = tb.run(t, aliceID, "userlist")
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "List of users in the database: \n - alice\n - bob", resp.Data.Embeds[0].Description)
}

func TestMountList(t *testing.T) {
	tests := []struct {
		name     string
		opts     []*discordgo.ApplicationCommandInteractionDataOption
		wantDesc string
		wantText string
	}{
		{
			name:     "every mount of the expansion",
			opts:     []*discordgo.ApplicationCommandInteractionDataOption{strOpt("expansion", hw)},
			wantDesc: "Available mounts are: \n - a4s\n - ravana",
		},
		{
			name:     "raids only",
			opts:     []*discordgo.ApplicationCommandInteractionDataOption{strOpt("expansion", hw), strOpt("category", "raid")},
			wantDesc: "Available mounts are: \n - a4s",
		},
		{
			name:     "expansion without mounts",
			opts:     []*discordgo.ApplicationCommandInteractionDataOption{strOpt("expansion", "dawntrail")},
			wantDesc: "Available mounts are: \n - none",
		},
		{
			name:     "unknown expansion",
			opts:     []*discordgo.ApplicationCommandInteractionDataOption{strOpt("expansion", "final fantasy")},
			wantText: "I don't have a `final fantasy` expansion in my database.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			resp := tb.run(t, aliceID, "mountlist", tt.opts...)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, resp.Data.Content)
				return
			}
			require.Len(t, resp.Data.Embeds, 1)
			assert.Equal(t, tt.wantDesc, resp.Data.Embeds[0].Description)
		})
	}
}

func TestAddMount(t *testing.T) {
	tests := []struct {
		name     string
		register bool
		names    string
		want     string
	}{
		{
			name:  "unregistered caller",
			names: "ifrit",
			want:  msgUnknownUser,
		},
		{
			name:     "one mount",
			register: true,
			names:    "ifrit",
			want:     "Added `ifrit` to your `a realm reborn` mounts.",
		},
		{
			name:     "several mounts",
			register: true,
			names:    "ifrit, titan",
			want:     "Added `ifrit`, `titan` to your `a realm reborn` mounts.",
		},
		{
			name:     "mount from another expansion",
			register: true,
			names:    "ifrit,ravana",
			want: "Added `ifrit` to your `a realm reborn` mounts.\n" +
				"I don't have a `a realm reborn` mount named `ravana` in my database.",
		},
		{
			name:     "no names",
			register: true,
			names:    " , ",
			want:     "Tell me which mounts, separated by commas.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Options{})
			if tt.register {
				tb.register(t, "alice", aliceID)
			}
			resp := tb.run(t, aliceID, "addmount", strOpt("expansion", arr), strOpt("name", tt.names))
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestAddRemoveMount_MyMounts(t *testing.T) {
	tb := newTestBot(t, Options{})
	tb.register(t, "alice", aliceID)

	mymounts := func() *discordgo.MessageEmbed {
		resp := tb.run(t, aliceID, "mymounts", strOpt("expansion", arr))
		assert.False(t, isEphemeral(resp))
		require.Len(t, resp.Data.Embeds, 1)
		return resp.Data.Embeds[0]
	}

	embed := mymounts()
	assert.Equal(t, "A Realm Reborn mounts", embed.Title)
	assert.Equal(t, " - none", embed.Fields[0].Value)
	assert.Equal(t, " - ifrit\n - titan", embed.Fields[1].Value)
	require.NotNil(t, embed.Image)
	assert.Equal(t, expansionImages[arr], embed.Image.URL)

	tb.run(t, aliceID, "addmount", strOpt("expansion", arr), strOpt("name", "titan"))
	embed = mymounts()
	assert.Equal(t, " - titan", embed.Fields[0].Value)
	assert.Equal(t, " - ifrit", embed.Fields[1].Value)

	resp := tb.run(t, aliceID, "removemount", strOpt("expansion", arr), strOpt("name", "titan"))
	assert.Equal(t, "Removed `titan` from your `a realm reborn` mounts.", resp.Data.Content)
	embed = mymounts()
	assert.Equal(t, " - none", embed.Fields[0].Value)
}

func TestMyMounts_Rejections(t *testing.T) {
	tb := newTestBot(t, Options{})

	resp := tb.run(t, aliceID, "mymounts", strOpt("expansion", arr))
	assert.Equal(t, msgUnknownUser, resp.Data.Content)

	resp = tb.run(t, aliceID, "mymounts", strOpt("expansion", "nope"))
	assert.Equal(t, noExpansion("nope"), resp.Data.Content)
}

func TestMostNeeded(t *testing.T) {
	tb := newTestBot(t, Options{})
	tb.register(t, "alice", aliceID)
	tb.register(t, "bob", bobID)
	tb.run(t, aliceID, "addmount", strOpt("expansion", arr), strOpt("name", "ifrit,titan"))
	tb.run(t, aliceID, "addmount", strOpt("expansion", hw), strOpt("name", "ravana"))
	tb.run(t, bobID, "addmount", strOpt("expansion", arr), strOpt("name", "titan"))

	tests := []struct {
		name       string
		n          float64
		wantMounts string
		wantCounts string
	}{
		{name: "top one", n: 1, wantMounts: "a4s", wantCounts: "2"},
		{name: "all rows", n: 10, wantMounts: "a4s\nifrit\nravana", wantCounts: "2\n1\n1"},
		{name: "above the cap", n: 500, wantMounts: "a4s\nifrit\nravana", wantCounts: "2\n1\n1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tb.run(t, aliceID, "mostneeded", intOpt("n", tt.n))
			require.Len(t, resp.Data.Embeds, 1)
			fields := resp.Data.Embeds[0].Fields
			require.Len(t, fields, 3)
			assert.Equal(t, tt.wantMounts, fields[1].Value)
			assert.Equal(t, tt.wantCounts, fields[2].Value)
		})
	}

	resp := tb.run(t, aliceID, "mostneeded", intOpt("n", 0))
	assert.Equal(t, "Ask for at least one mount.", resp.Data.Content)
}

func TestMostNeeded_NobodyNeedsAnything(t *testing.T) {
	tb := newTestBot(t, Options{})
	resp := tb.run(t, aliceID, "mostneeded", intOpt("n", 5))
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Nobody needs any mounts.", resp.Data.Embeds[0].Description)
}
