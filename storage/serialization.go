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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// cachedEmbeddingMUS encodes a CachedEmbedding as model, text, vector.
type cachedEmbeddingMUS struct{}

func (cachedEmbeddingMUS) Marshal(v CachedEmbedding, bs []byte) (n int) {
	n = ord.String.Marshal(v.Model, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + vectorMUS.Marshal(v.Vector, bs[n:])
}

func (cachedEmbeddingMUS) Unmarshal(bs []byte) (v CachedEmbedding, n int, err error) {
	v.Model, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (cachedEmbeddingMUS) Size(v CachedEmbedding) int {
	return ord.String.Size(v.Model) + ord.String.Size(v.Text) + vectorMUS.Size(v.Vector)
}

// CachedEmbeddingMUS is the mus serializer for CachedEmbedding.
var CachedEmbeddingMUS = cachedEmbeddingMUS{}

// MarshalCachedEmbedding serializes a CachedEmbedding to bytes.
func MarshalCachedEmbedding(e *CachedEmbedding) []byte {
	buf := make([]byte, CachedEmbeddingMUS.Size(*e))
	CachedEmbeddingMUS.Marshal(*e, buf)
	return buf
}

// UnmarshalCachedEmbedding deserializes a CachedEmbedding from bytes.
func UnmarshalCachedEmbedding(data []byte) (*CachedEmbedding, error) {
	e, _, err := CachedEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &e, nil
}
