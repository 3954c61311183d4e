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

// Package storage provides the persistence abstraction for faqmatch.
//
// The only persisted data is the catalog embedding cache: vectors of catalog
// questions keyed by embedding model and question text. Query history is never
// stored.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types:
//
//	cache, err := badger.NewEmbeddingCache(backend)  // returns storage.EmbeddingCache
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/faqmatch/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	cache, err := badger.NewEmbeddingCache(backend)
//
// Use in tests with in-memory storage:
//
//	cache, backend, err := badger.NewMemoryEmbeddingCache()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
