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

// Package transport is the caller side of the adapter RPC protocol: it
// correlates responses to in-flight requests by requestId, enforces per-call
// timeout budgets, and fails fast behind a circuit breaker when the
// connection itself is misbehaving.
package transport

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pontoon-io/pontoon/internal/codec"
	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/metrics"
	"github.com/pontoon-io/pontoon/internal/rpc"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// Transport owns one connection to the host RPC server. Safe for use by
// any number of goroutines; each Send suspends its caller until a matching
// response arrives or the budget elapses.
type Transport struct {
	conn     net.Conn
	timeouts Timeouts
	breaker  *Breaker
	limiter  *rate.Limiter
	bulk     *codec.BulkStore
	logger   *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *rpc.Envelope
	closed  bool
	readErr error

	done chan struct{}
}

// Option configures a Transport.
type Option func(*Transport) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) error {
		t.logger = logger
		return nil
	}
}

// WithTimeouts replaces the default budget table.
func WithTimeouts(timeouts Timeouts) Option {
	return func(t *Transport) error {
		t.timeouts = timeouts
		return nil
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(breaker *Breaker) Option {
	return func(t *Transport) error {
		t.breaker = breaker
		return nil
	}
}

// WithRateLimit caps outgoing calls per second. Zero disables the cap.
func WithRateLimit(callsPerSecond float64, burst int) Option {
	return func(t *Transport) error {
		if callsPerSecond > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), burst)
		}
		return nil
	}
}

// WithBulk enables the side channel for oversized payloads.
func WithBulk(bulk *codec.BulkStore) Option {
	return func(t *Transport) error {
		t.bulk = bulk
		return nil
	}
}

// Dial connects to the host socket and starts the read loop.
func Dial(socketPath string, opts ...Option) (*Transport, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", socketPath)
	}
	return New(conn, opts...)
}

// DialHost connects to the host socket with the conventional side-channel
// layout: the bulk spool directory next to the socket. Callers that dial
// without a bulk store would receive raw spool references for oversized
// results instead of the payloads.
func DialHost(socketPath string, opts ...Option) (*Transport, error) {
	bulk, err := codec.NewBulkStore(codec.DefaultBulkDir(socketPath), 0)
	if err != nil {
		return nil, err
	}
	return Dial(socketPath, append([]Option{WithBulk(bulk)}, opts...)...)
}

// New wraps an established connection and starts the read loop.
func New(conn net.Conn, opts ...Option) (*Transport, error) {
	t := &Transport{
		conn:     conn,
		timeouts: DefaultTimeouts(),
		breaker:  NewBreaker(DefaultFailureThreshold, DefaultCooldown),
		pending:  make(map[string]chan *rpc.Envelope),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.logger = logpkg.WithComponent(t.logger, "transport")

	go t.readLoop()
	return t, nil
}

// Send performs one round trip: it writes a call envelope and suspends
// until the correlated response arrives or the method's budget elapses.
// Application errors come back as *codec.RemoteError with code preserved;
// transport failures, timeouts and breaker rejections are retryable.
func (t *Transport) Send(ctx context.Context, adapter, method string, args []codec.Value) (codec.Value, error) {
	if err := t.breaker.Allow(); err != nil {
		metrics.RecordTransportFailure("circuit_open")
		return nil, err
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			t.breaker.Abandon()
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}

	if t.bulk != nil {
		externalized := make([]codec.Value, len(args))
		for i, arg := range args {
			ext, err := t.bulk.Externalize(arg)
			if err != nil {
				t.breaker.Abandon()
				return nil, errors.Wrapf(err, "externalizing argument %d", i)
			}
			if len(ext) != len(arg) {
				metrics.RecordBulkTransfer("out")
			}
			externalized[i] = ext
		}
		args = externalized
	}

	requestID := uuid.NewString()
	ch := make(chan *rpc.Envelope, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.breaker.Abandon()
		return nil, &ClosedError{}
	}
	t.pending[requestID] = ch
	t.mu.Unlock()

	if err := t.write(rpc.NewCall(requestID, adapter, method, args)); err != nil {
		t.removePending(requestID)
		t.breaker.Failure()
		metrics.RecordTransportFailure("write")
		return nil, &ConnError{Op: "write", Err: err}
	}

	budget := t.timeouts.For(method)
	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case env := <-ch:
		return t.complete(env, adapter, method)
	case <-timer.C:
		// Local give-up only: the host keeps working, and its eventual
		// response is dropped as an orphan.
		t.removePending(requestID)
		t.breaker.Failure()
		metrics.RecordTransportFailure("timeout")
		return nil, &TimeoutError{Adapter: adapter, Method: method, Budget: budget}
	case <-ctx.Done():
		// Cancellation says nothing about the wire, so the breaker gets
		// neither a success nor a failure, but an admitted trial slot
		// must not stay occupied forever.
		t.removePending(requestID)
		t.breaker.Abandon()
		return nil, ctx.Err()
	case <-t.done:
		t.removePending(requestID)
		return nil, t.sendFailure()
	}
}

func (t *Transport) complete(env *rpc.Envelope, adapter, method string) (codec.Value, error) {
	// The wire worked, so the breaker resets even when the adapter
	// returned a domain error.
	t.breaker.Success()

	if len(env.Error) > 0 {
		return nil, codec.DecodeError(env.Error)
	}

	result := env.Result
	if t.bulk != nil && len(result) > 0 {
		resolved, err := t.bulk.Resolve(result)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s.%s result", adapter, method)
		}
		if len(resolved) != len(result) {
			metrics.RecordBulkTransfer("in")
		}
		result = resolved
	}
	return result, nil
}

func (t *Transport) sendFailure() error {
	t.mu.Lock()
	err := t.readErr
	t.mu.Unlock()
	t.breaker.Failure()
	metrics.RecordTransportFailure("connection")
	if err == nil {
		return &ClosedError{}
	}
	return &ConnError{Op: "read", Err: err}
}

// InFlight returns the number of calls awaiting a response.
func (t *Transport) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Close shuts the connection down. In-flight calls fail with a connection
// error. Safe to call more than once.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	return t.conn.Close()
}

func (t *Transport) write(env *rpc.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.conn.Write(append(data, rpc.Terminator))
	return err
}

func (t *Transport) removePending(requestID string) {
	t.mu.Lock()
	delete(t.pending, requestID)
	t.mu.Unlock()
}

func (t *Transport) readLoop() {
	defer close(t.done)

	var frames rpc.FrameBuffer
	buf := make([]byte, 64*1024)

	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			ready, ferr := frames.Feed(buf[:n])
			if ferr != nil {
				t.fail(ferr)
				return
			}
			for _, frame := range ready {
				t.deliver(frame)
			}
		}
		if err != nil {
			t.fail(err)
			return
		}
	}
}

func (t *Transport) deliver(frame []byte) {
	env, err := rpc.Parse(frame)
	if err != nil {
		t.logger.Warn("dropping unparseable frame", logpkg.Error(err))
		return
	}
	if env.Type != rpc.TypeResponse {
		t.logger.Warn("dropping unexpected envelope type", "type", env.Type)
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[env.RequestID]
	if ok {
		delete(t.pending, env.RequestID)
	}
	t.mu.Unlock()

	if !ok {
		// Orphan: the caller already gave up on this requestId.
		t.logger.Debug("dropping orphan response", logpkg.RequestIDKey, env.RequestID)
		return
	}
	ch <- env
}

func (t *Transport) fail(err error) {
	t.mu.Lock()
	if t.readErr == nil {
		t.readErr = err
	}
	alreadyClosed := t.closed
	t.closed = true
	t.mu.Unlock()

	if !alreadyClosed {
		t.logger.Warn("connection lost", logpkg.Error(err))
		t.conn.Close()
	}
}
