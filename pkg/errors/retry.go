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

package errors

// Classifier is implemented by errors that declare whether retrying the
// failed operation may succeed. Transport-level failures (connection reset,
// timeout, open circuit) are retryable; errors raised by the remote adapter
// method itself are not.
type Classifier interface {
	error

	// Retryable reports whether the operation may be retried.
	Retryable() bool
}

// IsRetryable reports whether err, or any error in its tree, declares
// itself retryable. Errors without a classification are non-retryable.
func IsRetryable(err error) bool {
	for err != nil {
		if c, ok := err.(Classifier); ok {
			return c.Retryable()
		}
		err = Unwrap(err)
	}
	return false
}
