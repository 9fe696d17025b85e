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

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/pontoon-io/pontoon/pkg/errors"
)

// evalWhen evaluates an adapter entry's `when` condition. An empty
// expression is true.
func evalWhen(expression string, env map[string]any) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return false, errors.Wrapf(err, "compiling when expression %q", expression)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, errors.Wrapf(err, "evaluating when expression %q", expression)
	}

	enabled, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("when expression %q must return a boolean", expression)
	}
	return enabled, nil
}

// whenEnv builds the evaluation environment once per resolution pass.
func whenEnv() map[string]any {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return map[string]any{
		"env":      vars,
		"platform": runtime.GOOS,
	}
}
