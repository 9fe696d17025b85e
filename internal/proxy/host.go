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

package proxy

import (
	"context"
	"fmt"

	"github.com/pontoon-io/pontoon/internal/codec"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// HostToken is the reserved token the platform's control adapter answers on.
const HostToken = "host"

// AdapterInfo describes one loaded adapter, as reported by listAdapters.
type AdapterInfo struct {
	Token        string   `json:"token"`
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Implements   []string `json:"implements,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Host is a stub for the platform control adapter.
type Host struct {
	tr Transport
}

// NewHost creates a host control stub.
func NewHost(tr Transport) *Host {
	return &Host{tr: tr}
}

// ListAdapters returns the loaded adapters, sorted by token.
func (h *Host) ListAdapters(ctx context.Context) ([]AdapterInfo, error) {
	result, err := call(ctx, h.tr, HostToken, "listAdapters")
	if err != nil {
		return nil, err
	}
	var infos []AdapterInfo
	if err := codec.DecodeInto(result, &infos); err != nil {
		return nil, errors.Wrap(err, "decoding listAdapters result")
	}
	return infos, nil
}

// Ping verifies the control channel end to end.
func (h *Host) Ping(ctx context.Context) error {
	result, err := call(ctx, h.tr, HostToken, "ping")
	if err != nil {
		return err
	}
	var reply string
	if err := codec.DecodeInto(result, &reply); err != nil {
		return errors.Wrap(err, "decoding ping result")
	}
	if reply != "pong" {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// Version returns the host platform version.
func (h *Host) Version(ctx context.Context) (string, error) {
	result, err := call(ctx, h.tr, HostToken, "version")
	if err != nil {
		return "", err
	}
	var version string
	if err := codec.DecodeInto(result, &version); err != nil {
		return "", errors.Wrap(err, "decoding version result")
	}
	return version, nil
}
