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


package search

import "errors"

var (
	// ErrRepositoryRequired is returned when a document repository is not provided.
	ErrRepositoryRequired = errors.New("document repository required")

	// ErrWebProviderRequired is returned when a web search provider is not provided.
	ErrWebProviderRequired = errors.New("web search provider required")

	// ErrFetcherRequired is returned when a content fetcher is not provided.
	ErrFetcherRequired = errors.New("content fetcher required")

	// ErrInvalidAlpha is returned when the blend factor is outside [0, 1].
	ErrInvalidAlpha = errors.New("alpha must be in [0, 1]")
)
