package engine

import (
	"testing"

	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestSledEngineSetGetRemove(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSledEngine(dir, logger.New("test"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set("a", "1"))
	value, err := db.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)

	require.NoError(t, db.Remove("a"))
	_, err = db.Get("a")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSledEngineReopenPersists(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSledEngine(dir, logger.New("test"))
	require.NoError(t, err)
	require.NoError(t, db.Set("a", "1"))
	require.NoError(t, db.Close())

	reopened, err := OpenSledEngine(dir, logger.New("test"))
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestSledEngineCloneSharesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSledEngine(dir, logger.New("test"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set("a", "1"))

	clone := db.Clone()
	value, err := clone.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)

	// Closing a non-root clone must not close the shared database.
	require.NoError(t, clone.Close())
	value, err = db.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}
