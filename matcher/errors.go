// Copyright 2024 Google LLC
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

package matcher

import "github.com/pkg/errors"

// InvariantError reports a violation of one of the matcher's structural
// invariants: these are programmer errors in the caller or in a
// collaborator (e.g. an attribute value of a kind MatchRetValue cannot
// compare, or MatchAuto called without a var2val mapping), never an
// ordinary failed match. Ordinary mismatches return false; they never
// reach this type.
type InvariantError struct {
	cause error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "dataflow matcher invariant violated: " + e.cause.Error()
}

// Unwrap exposes the underlying stack-carrying error, mirroring how the
// teacher's fmterr.ErrorWithPos unwraps to its wrapped cause.
func (e *InvariantError) Unwrap() error { return e.cause }

func invariantf(format string, args ...any) {
	panic(&InvariantError{cause: errors.Errorf(format, args...)})
}

// Recover turns a panicking *InvariantError into a returned error,
// leaving any other panic to propagate. Callers that want Match to report
// invariant violations as an error rather than a panic should defer
// Recover(&err) at the top of their own entry point; the matcher's own
// exported Match/MatchAuto let these panics surface directly, mirroring
// the abort-class ICHECK failures of the original matcher.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InvariantError); ok {
		*err = ie
		return
	}
	panic(r)
}
