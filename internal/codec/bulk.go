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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// DefaultBulkThreshold is the serialized size above which a value is spooled
// through the bulk side channel instead of travelling inline in the envelope.
// Large payloads inline would head-of-line-block the framed message channel.
const DefaultBulkThreshold = 64 * 1024

// bulkTag is the marker key identifying a bulk reference value.
const bulkTag = "$bulk"

// BulkRef points at a spooled payload in the side channel directory.
type BulkRef struct {
	ID     string `json:"id"`
	Size   int64  `json:"size"`
	Digest string `json:"digest"`
}

type wireBulk struct {
	Ref *BulkRef `json:"$bulk"`
}

// BulkStore spools oversized wire values to files shared between the host
// and its subprocess. The unix socket guarantees both ends see the same
// filesystem, so a spool directory next to the socket is the side channel.
type BulkStore struct {
	dir       string
	threshold int
}

// DefaultBulkDir returns the conventional spool directory for a socket:
// a "bulk" directory next to the socket file. Host and callers must agree
// on it, since references travel by path-free id.
func DefaultBulkDir(socketPath string) string {
	return filepath.Join(filepath.Dir(socketPath), "bulk")
}

// NewBulkStore creates a bulk store rooted at dir. A threshold of zero
// selects DefaultBulkThreshold.
func NewBulkStore(dir string, threshold int) (*BulkStore, error) {
	if threshold <= 0 {
		threshold = DefaultBulkThreshold
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("codec: creating bulk directory: %w", err)
	}
	return &BulkStore{dir: dir, threshold: threshold}, nil
}

// Dir returns the spool directory path.
func (b *BulkStore) Dir() string {
	return b.dir
}

// Threshold returns the externalization threshold in bytes.
func (b *BulkStore) Threshold() int {
	return b.threshold
}

// Externalize spools raw through the side channel when it exceeds the
// threshold, returning a tagged reference; smaller values pass through
// unchanged.
func (b *BulkStore) Externalize(raw Value) (Value, error) {
	if len(raw) <= b.threshold {
		return raw, nil
	}

	sum := blake2b.Sum256(raw)
	ref := &BulkRef{
		ID:     uuid.New().String(),
		Size:   int64(len(raw)),
		Digest: hex.EncodeToString(sum[:]),
	}

	if err := os.WriteFile(b.path(ref.ID), raw, 0o600); err != nil {
		return nil, fmt.Errorf("codec: spooling bulk payload: %w", err)
	}

	tagged, err := json.Marshal(wireBulk{Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("codec: encoding bulk reference: %w", err)
	}
	return tagged, nil
}

// Resolve replaces a tagged bulk reference with the spooled payload,
// verifying size and digest and removing the spool file. Non-reference
// values pass through unchanged.
func (b *BulkStore) Resolve(raw Value) (Value, error) {
	var wb wireBulk
	if err := json.Unmarshal(raw, &wb); err != nil || wb.Ref == nil {
		return raw, nil
	}
	ref := wb.Ref

	path := b.path(ref.ID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codec: reading bulk payload %s: %w", ref.ID, err)
	}

	if int64(len(data)) != ref.Size {
		return nil, fmt.Errorf("codec: bulk payload %s: size mismatch (%d != %d)", ref.ID, len(data), ref.Size)
	}
	sum := blake2b.Sum256(data)
	if hex.EncodeToString(sum[:]) != ref.Digest {
		return nil, fmt.Errorf("codec: bulk payload %s: digest mismatch", ref.ID)
	}

	// The consumer owns cleanup; a failed remove only leaks a spool file.
	_ = os.Remove(path)

	return Value(data), nil
}

func (b *BulkStore) path(id string) string {
	// uuid.Parse guards against path traversal in untrusted references.
	if _, err := uuid.Parse(id); err != nil {
		return filepath.Join(b.dir, "invalid")
	}
	return filepath.Join(b.dir, id+".blob")
}
