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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/internal/codec"
)

func TestCallRoundTrip(t *testing.T) {
	args, err := codec.EncodeArgs("session:42", 7)
	require.NoError(t, err)

	call := NewCall("req-1", "cache", "get", args)
	data, err := call.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, TypeCall, parsed.Type)
	assert.Equal(t, "req-1", parsed.RequestID)
	assert.Equal(t, ProtocolVersion, parsed.Version)
	assert.Equal(t, "cache", parsed.Adapter)
	assert.Equal(t, "get", parsed.Method)
	require.Len(t, parsed.Args, 2)
	assert.JSONEq(t, `"session:42"`, string(parsed.Args[0]))
}

func TestErrorResponsePreservesCode(t *testing.T) {
	resp := NewErrorResponse("req-2", &DispatchError{
		ErrorCode: CodeMethodNotFound,
		Message:   "no such method",
	})
	data, err := resp.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Error)

	derr := codec.DecodeError(parsed.Error)
	require.Error(t, derr)
	var remote *codec.RemoteError
	require.ErrorAs(t, derr, &remote)
	assert.Equal(t, CodeMethodNotFound, remote.Code())
	assert.Equal(t, "no such method", remote.Message)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr error
	}{
		{
			name: "valid call",
			env:  Envelope{Type: TypeCall, RequestID: "r", Adapter: "a", Method: "m"},
		},
		{
			name: "valid void response",
			env:  Envelope{Type: TypeResponse, RequestID: "r"},
		},
		{
			name:    "missing request id",
			env:     Envelope{Type: TypeCall, Adapter: "a", Method: "m"},
			wantErr: ErrMissingRequestID,
		},
		{
			name:    "call missing adapter",
			env:     Envelope{Type: TypeCall, RequestID: "r", Method: "m"},
			wantErr: ErrInvalidEnvelope,
		},
		{
			name:    "call missing method",
			env:     Envelope{Type: TypeCall, RequestID: "r", Adapter: "a"},
			wantErr: ErrInvalidEnvelope,
		},
		{
			name:    "unknown type",
			env:     Envelope{Type: "adapter:nope", RequestID: "r"},
			wantErr: ErrInvalidEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}
