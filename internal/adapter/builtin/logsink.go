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

package builtin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pontoon-io/pontoon/internal/adapter"
	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/internal/manifest"
)

func logSinkProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.log.sink",
			Name:            "Structured Log Sink",
			Version:         "1.0.0",
			Type:            manifest.TypeCore,
			Implements:      "logsink",
			Capabilities:    []string{manifest.CapabilityRPC},
		},
		New: func(ctx context.Context, settings adapter.Settings, _ adapter.Deps) (adapter.Instance, error) {
			return NewSlogSink(slog.Default(), settings.String("source", "adapter")), nil
		},
	}
}

// SlogSink forwards adapter log records into the host's structured logger,
// keeping an in-memory tail for inspection.
type SlogSink struct {
	logger *slog.Logger
	source string

	mu   sync.Mutex
	tail []Record
}

// Record is one written log entry.
type Record struct {
	Level   string
	Message string
	Fields  map[string]any
}

const tailSize = 256

var _ adapter.LogSink = (*SlogSink)(nil)

// NewSlogSink creates a sink writing through the given logger.
func NewSlogSink(logger *slog.Logger, source string) *SlogSink {
	return &SlogSink{
		logger: logpkg.WithComponent(logger, "logsink"),
		source: source,
	}
}

// Write implements adapter.LogSink.
func (s *SlogSink) Write(ctx context.Context, level, message string, fields map[string]any) error {
	attrs := make([]any, 0, 2+2*len(fields))
	attrs = append(attrs, "source", s.source)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}

	switch level {
	case "debug":
		s.logger.Debug(message, attrs...)
	case "warn":
		s.logger.Warn(message, attrs...)
	case "error":
		s.logger.Error(message, attrs...)
	default:
		s.logger.Info(message, attrs...)
	}

	s.mu.Lock()
	s.tail = append(s.tail, Record{Level: level, Message: message, Fields: fields})
	if len(s.tail) > tailSize {
		s.tail = s.tail[len(s.tail)-tailSize:]
	}
	s.mu.Unlock()
	return nil
}

// Tail returns a copy of the most recent records, oldest first.
func (s *SlogSink) Tail() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.tail))
	copy(out, s.tail)
	return out
}
