package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

func TestBackend_Export(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, twoTrials)
	_, err := b.Users().Register(ctx, "alice", 42)
	require.NoError(t, err)
	_, err = b.Status().SetOwnership(ctx, 42, []string{"ifrit"}, true)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, b.Export(ctx, dir))

	items, err := readJSONL(filepath.Join(dir, ExportFileName(types.TableItems)))
	require.NoError(t, err)
	require.Len(t, items, 2)
	var it types.Item
	require.NoError(t, json.Unmarshal(items[0], &it))
	assert.Equal(t, arr, it.Expansion)
	assert.Equal(t, types.CategoryTrial, it.Category)

	users, err := readJSONL(filepath.Join(dir, ExportFileName(types.TableUsers)))
	require.NoError(t, err)
	require.Len(t, users, 1)
	var u types.User
	require.NoError(t, json.Unmarshal(users[0], &u))
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, int64(42), u.ExternalID)

	status, err := readJSONL(filepath.Join(dir, ExportFileName(types.TableStatus)))
	require.NoError(t, err)
	require.Len(t, status, 2)
	owned := 0
	for _, rec := range status {
		var s types.Status
		require.NoError(t, json.Unmarshal(rec, &s))
		assert.Equal(t, u.UserID, s.UserID)
		if s.HasItem {
			owned++
		}
	}
	assert.Equal(t, 1, owned)
}

func TestBackend_ExportDetached(t *testing.T) {
	b := newTestBackend(t, twoTrials)
	require.NoError(t, b.Detach())
	err := b.Export(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
