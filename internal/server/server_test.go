package server

import (
	stderrors "errors"
	"net"
	"testing"

	"github.com/iamNilotpal/kvs/internal/client"
	"github.com/iamNilotpal/kvs/internal/engine"
	"github.com/iamNilotpal/kvs/internal/protocol"
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

	s := New(eng, threadpool.NewNaiveThreadPool(), log, prometheus.NewRegistry())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	go func() { s.Serve(l) }()
	t.Cleanup(func() { l.Close() })

	return addr
}

func TestServerSetGetRemove(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", "1"))

	value, found, err := c.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", value)

	found, err = c.Remove("a")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = c.Get("a")
	require.NoError(t, err)
	require.False(t, found)
}

func TestServerRemoveMissingKey(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	found, err := c.Remove("missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestServerKeepsAcceptingAfterConnectionCloses(t *testing.T) {
	addr := startTestServer(t)

	c1, err := client.Dial(addr)
	require.NoError(t, err)
	require.NoError(t, c1.Set("a", "1"))
	require.NoError(t, c1.Close())

	c2, err := client.Dial(addr)
	require.NoError(t, err)
	defer c2.Close()

	value, found, err := c2.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", value)
}

// failingEngine always returns a non-NotFound error, standing in for an
// Io/Codec failure from the underlying engine.
type failingEngine struct{ engine.KvsEngine }

func (failingEngine) Set(key, value string) error    { return stderrors.New("disk full") }
func (failingEngine) Get(key string) (string, error) { return "", stderrors.New("disk full") }
func (failingEngine) Remove(key string) error        { return stderrors.New("disk full") }
func (e failingEngine) Clone() engine.KvsEngine       { return e }
func (failingEngine) Close() error                   { return nil }

func TestDispatchClosesConnectionOnHardError(t *testing.T) {
	s := New(failingEngine{}, threadpool.NewNaiveThreadPool(), logger.New("test"), prometheus.NewRegistry())

	_, closeConn := s.dispatch(failingEngine{}, protocol.NewSetRequest("k", "v"))
	require.True(t, closeConn)

	_, closeConn = s.dispatch(failingEngine{}, protocol.NewGetRequest("k"))
	require.True(t, closeConn)

	_, closeConn = s.dispatch(failingEngine{}, protocol.NewRemoveRequest("k"))
	require.True(t, closeConn)
}

func TestDispatchDoesNotCloseConnectionOnKeyNotFound(t *testing.T) {
	log := logger.New("test")
	eng, err := engine.OpenKvStore(t.TempDir(), log, 1<<20)
	require.NoError(t, err)
	defer eng.Close()

	s := New(eng, threadpool.NewNaiveThreadPool(), log, prometheus.NewRegistry())

	resp, closeConn := s.dispatch(eng, protocol.NewGetRequest("missing"))
	require.False(t, closeConn)
	require.Equal(t, keyNotFoundStatus, resp.Status)

	resp, closeConn = s.dispatch(eng, protocol.NewRemoveRequest("missing"))
	require.False(t, closeConn)
	require.Equal(t, keyNotFoundStatus, resp.Status)
}
