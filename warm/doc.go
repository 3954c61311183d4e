// Package warm pre-computes catalog question embeddings into the embedding
// cache, in batches with retries and progress reporting, so that a later
// start against a remote embedding service only embeds user questions.
package warm
