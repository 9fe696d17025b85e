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

// Package codec converts values and errors to and from the transport-safe
// wire representation used by the adapter RPC protocol. Values are JSON;
// errors travel as tagged objects so message and code survive the process
// boundary and can be re-raised on the caller side.
package codec

import (
	"encoding/json"
	"fmt"
)

// Value is one serialized argument or result on the wire.
type Value = json.RawMessage

// errorTag is the marker key identifying a serialized error value.
const errorTag = "$error"

// Coder is implemented by errors that carry a machine-readable code.
type Coder interface {
	Code() string
}

// RemoteError is an error produced by a remote adapter method, deserialized
// on the caller side with message and code preserved.
type RemoteError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.ErrorCode)
	}
	return e.Message
}

// Code returns the machine-readable error code, if any.
func (e *RemoteError) Code() string {
	return e.ErrorCode
}

// Retryable marks remote application errors as non-retryable: the adapter
// method itself failed, so repeating the identical call will fail the same way.
func (e *RemoteError) Retryable() bool {
	return false
}

type wireError struct {
	Err *RemoteError `json:"$error"`
}

// Encode serializes a value for transport. Error values are converted to the
// tagged error representation; everything else round-trips as plain JSON.
func Encode(v any) (Value, error) {
	if err, ok := v.(error); ok {
		return EncodeError(err), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding %T: %w", v, err)
	}
	return raw, nil
}

// EncodeError serializes an error, preserving its message and, when the
// error implements Coder, its code.
func EncodeError(err error) Value {
	re := &RemoteError{Message: err.Error()}
	if coder, ok := err.(Coder); ok {
		re.ErrorCode = coder.Code()
	}

	raw, marshalErr := json.Marshal(wireError{Err: re})
	if marshalErr != nil {
		// A RemoteError of two strings always marshals; keep the escape
		// hatch anyway so a codec bug cannot take down a dispatch path.
		raw, _ = json.Marshal(wireError{Err: &RemoteError{Message: "unserializable error"}})
	}
	return raw
}

// Decode deserializes a wire value. Tagged errors decode to *RemoteError so
// round-tripping an error value yields an error value.
func Decode(raw Value) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	if re, ok := decodeTaggedError(raw); ok {
		return re, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("codec: decoding value: %w", err)
	}
	return v, nil
}

// DecodeInto deserializes a wire value into a typed destination. If the
// value is a tagged error it is returned as the error instead.
func DecodeInto(raw Value, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if re, ok := decodeTaggedError(raw); ok {
		return re
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("codec: decoding into %T: %w", dst, err)
	}
	return nil
}

// DecodeError deserializes the error field of a response envelope.
func DecodeError(raw Value) error {
	if len(raw) == 0 {
		return nil
	}
	if re, ok := decodeTaggedError(raw); ok {
		return re
	}

	// Tolerate bare string errors from older peers.
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &RemoteError{Message: msg}
	}
	return &RemoteError{Message: string(raw)}
}

func decodeTaggedError(raw Value) (*RemoteError, bool) {
	var we wireError
	if err := json.Unmarshal(raw, &we); err != nil || we.Err == nil {
		return nil, false
	}
	return we.Err, true
}

// EncodeArgs serializes a list of call arguments.
func EncodeArgs(args ...any) ([]Value, error) {
	out := make([]Value, 0, len(args))
	for i, a := range args {
		raw, err := Encode(a)
		if err != nil {
			return nil, fmt.Errorf("codec: argument %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}
