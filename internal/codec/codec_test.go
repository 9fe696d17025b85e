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

package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripPrimitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "hello", "hello"},
		{"int becomes float64", 42, float64(42)},
		{"float", 3.5, 3.5},
		{"bool", true, true},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.in)
			require.NoError(t, err)

			out, err := Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRoundTripNestedComposite(t *testing.T) {
	in := map[string]any{
		"items": []any{"a", float64(1), true},
		"meta": map[string]any{
			"depth": map[string]any{"level": float64(3)},
		},
	}

	raw, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

type codedError struct {
	msg  string
	code string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

func TestRoundTripError(t *testing.T) {
	raw, err := Encode(&codedError{msg: "key not found", code: "ERR_MISSING"})
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)

	re, ok := out.(*RemoteError)
	require.True(t, ok, "decoded value should be a RemoteError")
	assert.Equal(t, "key not found", re.Message)
	assert.Equal(t, "ERR_MISSING", re.Code())
	assert.False(t, re.Retryable())
}

func TestRoundTripPlainError(t *testing.T) {
	raw, err := Encode(errors.New("boom"))
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)

	re, ok := out.(*RemoteError)
	require.True(t, ok)
	assert.Equal(t, "boom", re.Message)
	assert.Empty(t, re.Code())
}

func TestDecodeError(t *testing.T) {
	raw := EncodeError(&codedError{msg: "denied", code: "ERR_DENIED"})

	err := DecodeError(raw)
	require.Error(t, err)

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "denied", re.Message)
	assert.Equal(t, "ERR_DENIED", re.Code())
}

func TestDecodeErrorBareString(t *testing.T) {
	err := DecodeError(Value(`"legacy failure"`))
	require.Error(t, err)
	assert.Equal(t, "legacy failure", err.Error())
}

func TestDecodeErrorEmpty(t *testing.T) {
	assert.NoError(t, DecodeError(nil))
}

func TestDecodeInto(t *testing.T) {
	type doc struct {
		ID    string `json:"id"`
		Score int    `json:"score"`
	}

	raw, err := Encode(doc{ID: "d1", Score: 7})
	require.NoError(t, err)

	var out doc
	require.NoError(t, DecodeInto(raw, &out))
	assert.Equal(t, doc{ID: "d1", Score: 7}, out)
}

func TestDecodeIntoTaggedError(t *testing.T) {
	raw := EncodeError(errors.New("remote failed"))

	var out map[string]any
	err := DecodeInto(raw, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote failed")
}

func TestEncodeArgs(t *testing.T) {
	args, err := EncodeArgs("users", 10, map[string]any{"active": true})
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.JSONEq(t, `"users"`, string(args[0]))
	assert.JSONEq(t, `10`, string(args[1]))
}
