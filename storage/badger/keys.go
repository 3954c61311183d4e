package badger

import (
	"encoding/binary"

	"github.com/poiesic/faqmatch/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "embrec:"
)

// makeEmbeddingKey generates a key for a cached embedding.
// Format: prefix:modelID:textID, both IDs BigEndian so a model's records share a prefix.
func makeEmbeddingKey(model, text string) []byte {
	buf := makeModelPrefix(model)
	buf = binary.BigEndian.AppendUint64(buf, uint64(core.IDFromContent(model+"|"+text)))
	return buf
}

// makeModelPrefix generates the partial key shared by every embedding of model.
func makeModelPrefix(model string) []byte {
	buf := make([]byte, 0, len(embeddingPrefix)+16)
	buf = append(buf, embeddingPrefix...)
	return binary.BigEndian.AppendUint64(buf, uint64(core.IDFromContent(model)))
}
