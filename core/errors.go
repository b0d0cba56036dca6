// Copyright 2025 QSearch Authors
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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrInvalidDocID indicates the DocID is not a 16-character hex digest.
	ErrInvalidDocID = errors.New("invalid document id")

	// ErrMissingBasin indicates the Basin field is empty.
	ErrMissingBasin = errors.New("document has no basin vector")

	// ErrPhiOutOfRange indicates the Phi score is outside [0, 1].
	ErrPhiOutOfRange = errors.New("phi must be in [0, 1]")
)
