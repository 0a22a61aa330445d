//go:build unit

package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang-netstate/internal/adapter/infrastructure/file"
	"golang-netstate/internal/mock"
	"golang-netstate/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(context.Background(), file.NewManagerAdapter(), filepath.Join(t.TempDir(), "db", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSQLiteJournal_RecordAndList(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []types.JournalEntry{
		{Time: base, Operation: "l3_interface", Interfaces: []string{"eth0", "eth1"}, Changed: true},
		{Time: base.Add(time.Minute), Operation: "interface", Interfaces: []string{"eth0"}, CheckMode: true},
		{Time: base.Add(2 * time.Minute), Operation: "l3_interface", Interfaces: []string{"eth9"}, Error: `interface "eth9" not found`},
	}
	for _, entry := range entries {
		require.NoError(t, j.Record(ctx, entry))
	}

	t.Run("NewestFirst", func(t *testing.T) {
		got, err := j.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "l3_interface", got[0].Operation)
		assert.Equal(t, []string{"eth9"}, got[0].Interfaces)
		assert.Equal(t, `interface "eth9" not found`, got[0].Error)
		assert.True(t, got[0].Time.Equal(base.Add(2*time.Minute)))

		assert.True(t, got[1].CheckMode)
		assert.False(t, got[1].Changed)

		assert.True(t, got[2].Changed)
		assert.Equal(t, []string{"eth0", "eth1"}, got[2].Interfaces)
		assert.NotZero(t, got[2].ID)
	})

	t.Run("Limit", func(t *testing.T) {
		got, err := j.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "interface", got[1].Operation)
	})
}

func TestSQLiteJournal_Empty(t *testing.T) {
	j := openTestJournal(t)

	got, err := j.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteJournal_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, file.NewManagerAdapter(), path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, types.JournalEntry{Time: time.Now(), Operation: "apply"}))
	require.NoError(t, j.Close())

	j, err = Open(ctx, file.NewManagerAdapter(), path)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "apply", got[0].Operation)
	assert.Empty(t, got[0].Interfaces)
}

func TestOpen_DirectoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := filepath.Join(t.TempDir(), "state")
	fileMgr := mock.NewMockFileManager(ctrl)
	fileMgr.EXPECT().MkdirAll(dir, 0755).Return(errors.New("permission denied"))

	j, err := Open(context.Background(), fileMgr, filepath.Join(dir, "journal.db"))
	assert.Nil(t, j)
	require.Error(t, err)
	assert.Equal(t, "failed to create journal directory: permission denied", err.Error())
}

func TestOpen_CreatesDirectoryThroughFileManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	fileMgr := mock.NewMockFileManager(ctrl)
	fileMgr.EXPECT().MkdirAll(dir, 0755).Return(nil)

	j, err := Open(context.Background(), fileMgr, filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	assert.NoError(t, j.Close())
}
