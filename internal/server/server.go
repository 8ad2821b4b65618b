// Package server implements the TCP accept loop and per-connection
// request/response dispatch over internal/protocol, backed by whichever
// engine.KvsEngine the caller constructed.
package server

import (
	stderrors "errors"
	"io"
	"net"

	"github.com/iamNilotpal/kvs/internal/engine"
	"github.com/iamNilotpal/kvs/internal/protocol"
	"github.com/iamNilotpal/kvs/internal/threadpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// keyNotFoundStatus is the literal string the wire protocol uses in place
// of a structured not-found error.
const keyNotFoundStatus = "Key not found"

// Server accepts connections on a listener and dispatches each one's
// request stream to a shared engine, one goroutine per connection drawn
// from pool.
type Server struct {
	log    *zap.SugaredLogger
	engine engine.KvsEngine
	pool   threadpool.ThreadPool

	requests *prometheus.CounterVec
}

// New builds a Server. eng is cloned once per accepted connection; pool
// decides how that per-connection goroutine gets scheduled.
func New(eng engine.KvsEngine, pool threadpool.ThreadPool, log *zap.SugaredLogger, reg prometheus.Registerer) *Server {
	return &Server{
		log:    log,
		engine: eng,
		pool:   pool,
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvs_server_requests_total",
				Help: "kvs_server_requests_total counts requests processed, labeled by command and outcome.",
			},
			[]string{"command", "outcome"},
		),
	}
}

// ListenAndServe binds addr and serves it until the listener is closed or
// Accept returns an error.
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()

	return s.Serve(l)
}

// Serve accepts connections on an already-bound listener until it closes
// or Accept returns an error. Exposed separately from ListenAndServe so
// tests can bind an ephemeral port themselves.
func (s *Server) Serve(l net.Listener) error {
	s.log.Infow("server listening", "addr", l.Addr().String())

	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}

		clone := s.engine.Clone()
		s.pool.Spawn(func() {
			s.handle(conn, clone)
		})
	}
}

// handle runs conn's request/response loop against eng until EOF, a
// decode/encode error, or a non-NotFound engine error, then closes both.
func (s *Server) handle(conn net.Conn, eng engine.KvsEngine) {
	defer conn.Close()
	defer eng.Close()

	decoder := protocol.NewRequestDecoder(conn)
	encoder := protocol.NewResponseEncoder(conn)

	for {
		req, err := decoder.Decode()
		if err != nil {
			if !stderrors.Is(err, io.EOF) {
				s.log.Errorw("failed to decode request, closing connection", "error", err)
			}
			return
		}

		resp, closeConn := s.dispatch(eng, req)
		if closeConn {
			return
		}
		if err := encoder.Encode(resp); err != nil {
			s.log.Errorw("failed to encode response, closing connection", "error", err)
			return
		}
	}
}

// dispatch applies one request to eng and builds the wire response,
// translating engine.ErrKeyNotFound to the literal protocol status string
// and counting the outcome. Any other engine error is logged here and
// signaled back via closeConn so handle ends this connection's
// request-processing loop without sending a response that would be
// indistinguishable from success on the wire; the listener keeps accepting
// new connections regardless.
func (s *Server) dispatch(eng engine.KvsEngine, req protocol.Request) (resp protocol.Response, closeConn bool) {
	switch {
	case req.Set != nil:
		err := eng.Set(req.Set.Key, req.Set.Value)
		s.count("set", err)
		if err != nil {
			s.log.Errorw("set failed, closing connection", "key", req.Set.Key, "error", err)
			return protocol.Response{}, true
		}
		return protocol.Response{}, false

	case req.Get != nil:
		value, err := eng.Get(req.Get.Key)
		s.count("get", err)
		if err != nil {
			if stderrors.Is(err, engine.ErrKeyNotFound) {
				return protocol.Response{Status: keyNotFoundStatus}, false
			}
			s.log.Errorw("get failed, closing connection", "key", req.Get.Key, "error", err)
			return protocol.Response{}, true
		}
		return protocol.Response{Status: value}, false

	case req.Remove != nil:
		err := eng.Remove(req.Remove.Key)
		s.count("remove", err)
		if err != nil {
			if stderrors.Is(err, engine.ErrKeyNotFound) {
				return protocol.Response{Status: keyNotFoundStatus}, false
			}
			s.log.Errorw("remove failed, closing connection", "key", req.Remove.Key, "error", err)
			return protocol.Response{}, true
		}
		return protocol.Response{}, false

	default:
		s.count("unknown", stderrors.New("empty request"))
		return protocol.Response{Status: "Protocol error: empty request"}, false
	}
}

func (s *Server) count(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.requests.WithLabelValues(command, outcome).Inc()
}
