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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, fb *FrameBuffer, chunks ...string) [][]byte {
	t.Helper()
	var out [][]byte
	for _, chunk := range chunks {
		frames, err := fb.Feed([]byte(chunk))
		require.NoError(t, err)
		out = append(out, frames...)
	}
	return out
}

func TestFrameBufferSingleFrame(t *testing.T) {
	var fb FrameBuffer
	frames := feedAll(t, &fb, "{\"a\":1}\n")
	require.Len(t, frames, 1)
	assert.Equal(t, `{"a":1}`, string(frames[0]))
	assert.Zero(t, fb.Pending())
}

func TestFrameBufferSplitAcrossReads(t *testing.T) {
	var fb FrameBuffer
	frames := feedAll(t, &fb, `{"requestId":`, `"abc"`, "}\n")
	require.Len(t, frames, 1)
	assert.Equal(t, `{"requestId":"abc"}`, string(frames[0]))
}

func TestFrameBufferCoalescedRead(t *testing.T) {
	var fb FrameBuffer
	frames := feedAll(t, &fb, "{\"a\":1}\n{\"b\":2}\n{\"c\":")
	require.Len(t, frames, 2)
	assert.Equal(t, `{"a":1}`, string(frames[0]))
	assert.Equal(t, `{"b":2}`, string(frames[1]))
	assert.NotZero(t, fb.Pending())

	frames = feedAll(t, &fb, "3}\n")
	require.Len(t, frames, 1)
	assert.Equal(t, `{"c":3}`, string(frames[0]))
}

func TestFrameBufferSkipsEmptyFrames(t *testing.T) {
	var fb FrameBuffer
	frames := feedAll(t, &fb, "\n\n{\"a\":1}\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, `{"a":1}`, string(frames[0]))
}

func TestFrameBufferOversizeFrame(t *testing.T) {
	var fb FrameBuffer
	big := bytes.Repeat([]byte("x"), MaxFrameSize+1)
	_, err := fb.Feed(big)
	assert.Error(t, err)
}
