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

// Package rpc implements the adapter remote-call wire protocol and the
// host-side server that dispatches decoded calls against live adapter
// instances. Envelopes are UTF-8 JSON, one per line; requestId is the sole
// correlation key between a call and its response.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pontoon-io/pontoon/internal/codec"
)

// ProtocolVersion is the envelope version this build speaks. Version skew
// is logged, never fatal: rolling upgrades must degrade gracefully.
const ProtocolVersion = 1

// Envelope types.
const (
	// TypeCall is a request from the subprocess to the host.
	TypeCall = "adapter:call"

	// TypeResponse answers exactly one call, matched by requestId.
	TypeResponse = "adapter:response"
)

var (
	// ErrInvalidEnvelope is returned when an envelope cannot be parsed.
	ErrInvalidEnvelope = errors.New("rpc: invalid envelope")

	// ErrMissingRequestID is returned when an envelope lacks a request ID.
	ErrMissingRequestID = errors.New("rpc: missing requestId")
)

// Envelope is one framed protocol message. Calls carry adapter, method and
// args; responses carry result or error.
type Envelope struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId"`
	Version   int           `json:"version,omitempty"`
	Adapter   string        `json:"adapter,omitempty"`
	Method    string        `json:"method,omitempty"`
	Args      []codec.Value `json:"args,omitempty"`
	Result    codec.Value   `json:"result,omitempty"`
	Error     codec.Value   `json:"error,omitempty"`
}

// NewCall creates a call envelope.
func NewCall(requestID, adapter, method string, args []codec.Value) *Envelope {
	return &Envelope{
		Type:      TypeCall,
		RequestID: requestID,
		Version:   ProtocolVersion,
		Adapter:   adapter,
		Method:    method,
		Args:      args,
	}
}

// NewResponse creates a success response for the given request.
func NewResponse(requestID string, result codec.Value) *Envelope {
	return &Envelope{
		Type:      TypeResponse,
		RequestID: requestID,
		Result:    result,
	}
}

// NewErrorResponse creates an error response for the given request. The
// error's message and code (when it implements codec.Coder) are preserved.
func NewErrorResponse(requestID string, err error) *Envelope {
	return &Envelope{
		Type:      TypeResponse,
		RequestID: requestID,
		Error:     codec.EncodeError(err),
	}
}

// Validate checks that the envelope is well-formed.
func (e *Envelope) Validate() error {
	if e.RequestID == "" {
		return ErrMissingRequestID
	}
	switch e.Type {
	case TypeCall:
		if e.Adapter == "" {
			return fmt.Errorf("%w: call missing adapter", ErrInvalidEnvelope)
		}
		if e.Method == "" {
			return fmt.Errorf("%w: call missing method", ErrInvalidEnvelope)
		}
	case TypeResponse:
		// Result and error are both optional: a void method returns neither.
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEnvelope, e.Type)
	}
	return nil
}

// Marshal encodes the envelope as a single JSON document without the frame
// terminator.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Parse decodes and validates an envelope.
func Parse(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
