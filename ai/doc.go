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

// Package ai provides abstractions for the embedding capability used by faqmatch.
//
// The matching engine never talks to a model directly. It depends on the
// Embedder interface defined here, which maps text to a fixed-length vector.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedding APIs (Ollama, LocalAI, vLLM, OpenAI)
//   - ai/tfidf: an offline embedder fitted on the catalog questions
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Production constructors return interface types. Test constructors return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "How can I track my order?")
package ai
