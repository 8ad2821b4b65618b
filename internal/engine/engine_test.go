package engine

import (
	"testing"

	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/iamNilotpal/kvs/pkg/options"
	"github.com/stretchr/testify/require"
)

func TestOpenDispatchesOnEngineName(t *testing.T) {
	log := logger.New("test")

	kvsDir := t.TempDir()
	kvsEngine, err := Open(&options.Options{DataDir: kvsDir, Engine: "kvs", CompactThreshold: 1 << 20}, log)
	require.NoError(t, err)
	defer kvsEngine.Close()
	_, ok := kvsEngine.(*KvStore)
	require.True(t, ok)

	sledDir := t.TempDir()
	sledEngine, err := Open(&options.Options{DataDir: sledDir, Engine: "sled"}, log)
	require.NoError(t, err)
	defer sledEngine.Close()
	_, ok = sledEngine.(*SledEngine)
	require.True(t, ok)
}

func TestOpenRejectsUnknownEngine(t *testing.T) {
	_, err := Open(&options.Options{DataDir: t.TempDir(), Engine: "bogus"}, logger.New("test"))
	require.Error(t, err)
}

func TestOpenRejectsEngineMismatchOnReopen(t *testing.T) {
	dir := t.TempDir()
	log := logger.New("test")

	first, err := Open(&options.Options{DataDir: dir, Engine: "kvs", CompactThreshold: 1 << 20}, log)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = Open(&options.Options{DataDir: dir, Engine: "sled"}, log)
	require.Error(t, err)
}
