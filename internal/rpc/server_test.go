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
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/internal/codec"
)

func startTestServer(t *testing.T, dispatcher *Dispatcher) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "pontoon.sock")
	srv := NewServer(ServerConfig{SocketPath: socketPath}, dispatcher)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })
	return srv, socketPath
}

func dialTest(t *testing.T, socketPath string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.DialTimeout("unix", socketPath, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func sendCall(t *testing.T, conn net.Conn, env *Envelope) {
	t.Helper()
	data, err := env.Marshal()
	require.NoError(t, err)
	_, err = conn.Write(append(data, Terminator))
	require.NoError(t, err)
}

func readResponse(t *testing.T, r *bufio.Reader) *Envelope {
	t.Helper()
	line, err := r.ReadBytes(Terminator)
	require.NoError(t, err)
	env, err := Parse(line[:len(line)-1])
	require.NoError(t, err)
	return env
}

func echoDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d := NewDispatcher()
	require.NoError(t, d.Register("echo", MethodSet{
		"say": func(ctx context.Context, args []codec.Value) (any, error) {
			msg, err := argString(args, 0, "msg")
			if err != nil {
				return nil, err
			}
			return msg, nil
		},
		"sleepy": func(ctx context.Context, args []codec.Value) (any, error) {
			ms, err := argInt(args, 0, "ms")
			if err != nil {
				return nil, err
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return ms, nil
		},
		"panic": func(ctx context.Context, args []codec.Value) (any, error) {
			panic("boom")
		},
	}))
	return d
}

func TestServerCallResponse(t *testing.T) {
	_, socketPath := startTestServer(t, echoDispatcher(t))
	conn, r := dialTest(t, socketPath)

	args, err := codec.EncodeArgs("hello")
	require.NoError(t, err)
	sendCall(t, conn, NewCall("req-1", "echo", "say", args))

	resp := readResponse(t, r)
	assert.Equal(t, TypeResponse, resp.Type)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.JSONEq(t, `"hello"`, string(resp.Result))
	assert.Empty(t, resp.Error)
}

func TestServerUnknownAdapterKeepsConnection(t *testing.T) {
	_, socketPath := startTestServer(t, echoDispatcher(t))
	conn, r := dialTest(t, socketPath)

	sendCall(t, conn, NewCall("req-bad", "ghost", "say", nil))
	resp := readResponse(t, r)
	assert.Equal(t, "req-bad", resp.RequestID)
	require.NotEmpty(t, resp.Error)
	var remote *codec.RemoteError
	require.ErrorAs(t, codec.DecodeError(resp.Error), &remote)
	assert.Equal(t, CodeAdapterNotFound, remote.Code())

	// Connection must survive a failed call.
	args, err := codec.EncodeArgs("still here")
	require.NoError(t, err)
	sendCall(t, conn, NewCall("req-ok", "echo", "say", args))
	resp = readResponse(t, r)
	assert.Equal(t, "req-ok", resp.RequestID)
	assert.JSONEq(t, `"still here"`, string(resp.Result))
}

func TestServerPanicBecomesErrorResponse(t *testing.T) {
	_, socketPath := startTestServer(t, echoDispatcher(t))
	conn, r := dialTest(t, socketPath)

	sendCall(t, conn, NewCall("req-p", "echo", "panic", nil))
	resp := readResponse(t, r)
	assert.Equal(t, "req-p", resp.RequestID)
	var remote *codec.RemoteError
	require.ErrorAs(t, codec.DecodeError(resp.Error), &remote)
	assert.Equal(t, CodeInternal, remote.Code())
	assert.Contains(t, remote.Message, "boom")
}

func TestServerOutOfOrderCompletion(t *testing.T) {
	_, socketPath := startTestServer(t, echoDispatcher(t))
	conn, r := dialTest(t, socketPath)

	slowArgs, err := codec.EncodeArgs(200)
	require.NoError(t, err)
	fastArgs, err := codec.EncodeArgs("fast")
	require.NoError(t, err)

	sendCall(t, conn, NewCall("req-slow", "echo", "sleepy", slowArgs))
	sendCall(t, conn, NewCall("req-fast", "echo", "say", fastArgs))

	first := readResponse(t, r)
	second := readResponse(t, r)
	assert.Equal(t, "req-fast", first.RequestID)
	assert.Equal(t, "req-slow", second.RequestID)
}

func TestServerConcurrentConnections(t *testing.T) {
	_, socketPath := startTestServer(t, echoDispatcher(t))

	connA, rA := dialTest(t, socketPath)
	connB, rB := dialTest(t, socketPath)

	argsA, err := codec.EncodeArgs("from-a")
	require.NoError(t, err)
	argsB, err := codec.EncodeArgs("from-b")
	require.NoError(t, err)

	sendCall(t, connA, NewCall("req-a", "echo", "say", argsA))
	sendCall(t, connB, NewCall("req-b", "echo", "say", argsB))

	respA := readResponse(t, rA)
	respB := readResponse(t, rB)
	assert.Equal(t, "req-a", respA.RequestID)
	assert.JSONEq(t, `"from-a"`, string(respA.Result))
	assert.Equal(t, "req-b", respB.RequestID)
	assert.JSONEq(t, `"from-b"`, string(respB.Result))
}

func TestServerBulkResult(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "pontoon.sock")
	bulk, err := codec.NewBulkStore(filepath.Join(dir, "bulk"), 64)
	require.NoError(t, err)

	d := NewDispatcher()
	big := strings.Repeat("x", 4096)
	require.NoError(t, d.Register("blob", MethodSet{
		"fetch": func(ctx context.Context, args []codec.Value) (any, error) {
			return big, nil
		},
	}))

	srv := NewServer(ServerConfig{SocketPath: socketPath, Bulk: bulk}, d)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })

	conn, r := dialTest(t, socketPath)
	sendCall(t, conn, NewCall("req-blob", "blob", "fetch", nil))
	resp := readResponse(t, r)
	require.Empty(t, resp.Error)

	// The wire carries a reference, not the payload.
	assert.Less(t, len(resp.Result), 1024)
	resolved, err := bulk.Resolve(resp.Result)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+big+`"`, string(resolved))
}

func TestServerCloseIdempotent(t *testing.T) {
	srv, socketPath := startTestServer(t, echoDispatcher(t))

	require.NoError(t, srv.Close())
	assert.False(t, srv.Running())
	require.NoError(t, srv.Close())

	_, err := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err))
}

// logCapture is a goroutine-safe sink for the server's slog output.
type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func TestServerVersionSkewWarnsAndProceeds(t *testing.T) {
	capture := &logCapture{}
	logger := slog.New(slog.NewTextHandler(capture, nil))

	socketPath := filepath.Join(t.TempDir(), "pontoon.sock")
	srv := NewServer(ServerConfig{SocketPath: socketPath, Logger: logger}, echoDispatcher(t))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })
	conn, r := dialTest(t, socketPath)

	args, err := codec.EncodeArgs("future")
	require.NoError(t, err)
	env := NewCall("req-skew", "echo", "say", args)
	env.Version = ProtocolVersion + 1
	sendCall(t, conn, env)

	// The mismatch is logged but the call is still processed normally.
	resp := readResponse(t, r)
	assert.Equal(t, "req-skew", resp.RequestID)
	assert.Empty(t, resp.Error)
	assert.JSONEq(t, `"future"`, string(resp.Result))
	assert.Contains(t, capture.String(), "protocol version skew")
}

func TestServerRemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "pontoon.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	srv := NewServer(ServerConfig{SocketPath: socketPath}, echoDispatcher(t))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })

	conn, r := dialTest(t, socketPath)
	args, err := codec.EncodeArgs("alive")
	require.NoError(t, err)
	sendCall(t, conn, NewCall("req-1", "echo", "say", args))
	assert.Equal(t, "req-1", readResponse(t, r).RequestID)
}
