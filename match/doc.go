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

// Package match answers free-text questions from a fixed catalog.
//
// Every catalog entry is scored against the question on two independent
// signals:
//
//   - semantic: similarity of dense embeddings of the raw texts
//   - lexical: an edit-distance ratio of the normalized texts
//
// The signals are fused by a weighted sum, entries are ranked by the fused
// score, and the best entry is returned only when it clears a confidence
// floor.
//
// # Usage
//
//	cat, err := catalog.Build(ctx, catalog.Default(), embedder)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := match.NewEngine(cat, embedder)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Release()
//
//	result, err := engine.Answer(ctx, "How do I track my order?")
//
// A MatchResult with StatusNoMatch or StatusEmptyQuestion is a normal answer,
// not an error. Errors are reserved for failures of the embedding capability.
package match
