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
	"bytes"
	"fmt"
)

// Terminator delimits envelopes on the wire.
const Terminator = '\n'

// MaxFrameSize bounds one envelope. Payloads anywhere near this size should
// be travelling through the bulk side channel instead.
const MaxFrameSize = 4 * 1024 * 1024

// FrameBuffer reassembles terminator-delimited frames from a byte stream.
// It handles a frame split across multiple reads and multiple frames
// arriving in one read. Each connection owns exactly one buffer; it is not
// safe for concurrent use.
type FrameBuffer struct {
	buf bytes.Buffer
}

// Feed appends p to the buffer and returns every complete frame now
// available, without the terminator. Empty frames (bare terminators) are
// skipped.
func (f *FrameBuffer) Feed(p []byte) ([][]byte, error) {
	f.buf.Write(p)

	var frames [][]byte
	for {
		data := f.buf.Bytes()
		idx := bytes.IndexByte(data, Terminator)
		if idx < 0 {
			break
		}

		frame := make([]byte, idx)
		copy(frame, data[:idx])
		f.buf.Next(idx + 1)

		if len(frame) == 0 {
			continue
		}
		frames = append(frames, frame)
	}

	if f.buf.Len() > MaxFrameSize {
		return nil, fmt.Errorf("rpc: frame exceeds %d bytes without terminator", MaxFrameSize)
	}
	return frames, nil
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (f *FrameBuffer) Pending() int {
	return f.buf.Len()
}
