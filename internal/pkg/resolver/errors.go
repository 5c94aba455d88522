// Copyright 2025 Conduit Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolver

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingFile is returned (wrapped) by fetchers when the repository is
// reachable but the requested file does not exist on the branch.
var ErrMissingFile = errors.New("file not found in repository")

// Kind classifies resolution failures. IO failures (FetchFailure,
// MissingFile) are kept apart from content malformation (ParseError,
// SchemaError).
type Kind string

const (
	KindMissingFile  Kind = "missing_file"
	KindFetchFailure Kind = "fetch_failure"
	KindParseError   Kind = "parse_error"
	KindSchemaError  Kind = "schema_error"
)

// ResolutionError is the typed failure of Resolve.
type ResolutionError struct {
	Kind Kind
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("config resolution failed (%s): %v", e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Err: err}
}

// IsKind reports whether err is a ResolutionError of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *ResolutionError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}

// IsResolutionError reports whether err is any ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}
