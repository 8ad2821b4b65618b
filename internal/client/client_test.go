package client

import (
	"net"
	"testing"

	"github.com/iamNilotpal/kvs/internal/engine"
	"github.com/iamNilotpal/kvs/internal/server"
	"github.com/iamNilotpal/kvs/internal/threadpool"
	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) string {
	t.Helper()

	log := logger.New("test")
	eng, err := engine.OpenKvStore(t.TempDir(), log, 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	s := server.New(eng, threadpool.NewNaiveThreadPool(), log, prometheus.NewRegistry())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()

	go func() { s.Serve(l) }()
	t.Cleanup(func() { l.Close() })

	return addr
}

func TestClientSetGetRemove(t *testing.T) {
	addr := startTestServer(t)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("114", "514"))
	value, found, err := c.Get("114")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "514", value)

	found, err = c.Remove("114")
	require.NoError(t, err)
	require.True(t, found)

	found, err = c.Remove("114")
	require.NoError(t, err)
	require.False(t, found)
}

func TestClientGetMissingKey(t *testing.T) {
	addr := startTestServer(t)

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	_, found, err := c.Get("nope")
	require.NoError(t, err)
	require.False(t, found)
}
