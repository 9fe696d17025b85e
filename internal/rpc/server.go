// Copyright 2026 Pontoon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/pontoon-io/pontoon/internal/codec"
	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/metrics"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// ServerConfig configures the unix socket RPC server.
type ServerConfig struct {
	// SocketPath is the filesystem path the server listens on.
	SocketPath string

	// Bulk handles side-channel transfer of large payloads. Optional;
	// when nil, oversized values travel inline.
	Bulk *codec.BulkStore

	Logger *slog.Logger
}

// Server accepts adapter:call envelopes over a unix socket and dispatches
// them against the registered method tables. Calls on a single connection
// are handled concurrently; responses are correlated by requestId and may
// complete out of order.
type Server struct {
	cfg        ServerConfig
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	running  bool

	wg sync.WaitGroup
}

// NewServer creates a server around the given dispatcher.
func NewServer(cfg ServerConfig, dispatcher *Dispatcher) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logpkg.WithComponent(logger, "rpc-server"),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start binds the socket and begins accepting connections. A stale socket
// file left behind by a previous run is removed before binding.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("rpc server already started")
	}

	dir := filepath.Dir(s.cfg.SocketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "creating socket directory %s", dir)
	}

	if _, err := os.Stat(s.cfg.SocketPath); err == nil {
		s.logger.Warn("removing stale socket file", "path", s.cfg.SocketPath)
		if err := os.Remove(s.cfg.SocketPath); err != nil {
			return errors.Wrap(err, "removing stale socket file")
		}
	}

	listener, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.cfg.SocketPath)
	}

	if err := os.Chmod(s.cfg.SocketPath, 0o600); err != nil {
		listener.Close()
		return errors.Wrap(err, "restricting socket permissions")
	}

	s.listener = listener
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(listener)

	s.logger.Info("rpc server listening", "path", s.cfg.SocketPath)
	return nil
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close stops accepting connections, closes active ones and removes the
// socket file. It is safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	s.listener = nil
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	var closeErr error
	if listener != nil {
		closeErr = listener.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
	s.wg.Wait()

	if err := os.Remove(s.cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing socket file", logpkg.Error(err))
	}

	s.logger.Info("rpc server stopped")
	return closeErr
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.Running() {
				s.logger.Error("accept failed", logpkg.Error(err))
			}
			return
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		metrics.ConnectionOpened()
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		metrics.ConnectionClosed()
	}()

	var (
		writeMu sync.Mutex
		callWG  sync.WaitGroup
		frames  FrameBuffer
		buf     = make([]byte, 64*1024)
	)
	defer callWG.Wait()

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			ready, ferr := frames.Feed(buf[:n])
			if ferr != nil {
				s.logger.Error("closing connection", logpkg.Error(ferr))
				return
			}
			for _, frame := range ready {
				s.handleFrame(conn, &writeMu, &callWG, frame)
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) handleFrame(conn net.Conn, writeMu *sync.Mutex, callWG *sync.WaitGroup, frame []byte) {
	env, err := Parse(frame)
	if err != nil {
		s.logger.Warn("dropping unparseable frame", logpkg.Error(err))
		return
	}
	if env.Type != TypeCall {
		s.logger.Warn("dropping unexpected envelope type", "type", env.Type)
		return
	}
	if env.Version != ProtocolVersion {
		s.logger.Warn("protocol version skew",
			"got", env.Version, "want", ProtocolVersion,
			logpkg.RequestIDKey, env.RequestID)
	}

	callWG.Add(1)
	go func() {
		defer callWG.Done()
		resp := s.execute(context.Background(), env)
		data, err := resp.Marshal()
		if err != nil {
			s.logger.Error("marshaling response", logpkg.Error(err),
				logpkg.RequestIDKey, env.RequestID)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := conn.Write(append(data, Terminator)); err != nil {
			s.logger.Warn("writing response", logpkg.Error(err),
				logpkg.RequestIDKey, env.RequestID)
		}
	}()
}

func (s *Server) execute(ctx context.Context, env *Envelope) *Envelope {
	start := time.Now()

	tracer := otel.Tracer("pontoon/rpc")
	ctx, span := tracer.Start(ctx, "rpc.dispatch")
	span.SetAttributes(
		attribute.String("rpc.adapter", env.Adapter),
		attribute.String("rpc.method", env.Method),
		attribute.String("rpc.request_id", env.RequestID),
	)
	defer span.End()

	args, err := s.resolveArgs(env.Args)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		metrics.RecordRequest(env.Adapter, env.Method, "error", time.Since(start))
		return NewErrorResponse(env.RequestID, err)
	}

	result, err := s.dispatchSafe(ctx, env.Adapter, env.Method, args)
	if err != nil {
		s.logger.Warn("call failed",
			logpkg.AdapterKey, env.Adapter,
			logpkg.MethodKey, env.Method,
			logpkg.RequestIDKey, env.RequestID,
			logpkg.Error(err))
		span.SetStatus(otelcodes.Error, err.Error())
		metrics.RecordRequest(env.Adapter, env.Method, "error", time.Since(start))
		return NewErrorResponse(env.RequestID, err)
	}

	encoded, err := codec.Encode(result)
	if err != nil {
		metrics.RecordRequest(env.Adapter, env.Method, "error", time.Since(start))
		return NewErrorResponse(env.RequestID, errors.Wrap(err, "encoding result"))
	}
	if s.cfg.Bulk != nil {
		externalized, err := s.cfg.Bulk.Externalize(encoded)
		if err != nil {
			metrics.RecordRequest(env.Adapter, env.Method, "error", time.Since(start))
			return NewErrorResponse(env.RequestID, errors.Wrap(err, "externalizing result"))
		}
		if len(externalized) != len(encoded) {
			metrics.RecordBulkTransfer("out")
		}
		encoded = externalized
	}

	metrics.RecordRequest(env.Adapter, env.Method, "ok", time.Since(start))
	s.logger.Debug("call completed",
		logpkg.AdapterKey, env.Adapter,
		logpkg.MethodKey, env.Method,
		logpkg.RequestIDKey, env.RequestID,
		logpkg.DurationKey, time.Since(start).Milliseconds())
	return NewResponse(env.RequestID, encoded)
}

// dispatchSafe converts a panicking method into an error response rather
// than letting it take down the connection.
func (s *Server) dispatchSafe(ctx context.Context, adapter, method string, args []codec.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DispatchError{
				ErrorCode: CodeInternal,
				Message:   fmt.Sprintf("panic in %s.%s: %v", adapter, method, r),
			}
		}
	}()
	return s.dispatcher.Dispatch(ctx, adapter, method, args)
}

func (s *Server) resolveArgs(args []codec.Value) ([]codec.Value, error) {
	if s.cfg.Bulk == nil {
		return args, nil
	}
	resolved := make([]codec.Value, len(args))
	for i, arg := range args {
		r, err := s.cfg.Bulk.Resolve(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving argument %d", i)
		}
		if len(r) != len(arg) {
			metrics.RecordBulkTransfer("in")
		}
		resolved[i] = r
	}
	return resolved, nil
}
