// Copyright 2025 Poiesic Systems
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

// Domain errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid catalog entry")

	// ErrEmptyQuestion indicates the Question field is blank.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the Answer field is blank.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrEmptyCatalog indicates a catalog with zero entries.
	ErrEmptyCatalog = errors.New("catalog has no entries")

	// ErrEmbeddingFailed indicates the embedding capability failed or was unavailable.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
