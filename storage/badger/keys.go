package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/clientpulse/kb/core"
)

// Key prefixes for different data types
const (
	documentPrefix  = "docrec"
	chunkPrefix     = "chkrec"
	embeddingPrefix = "embrec"
	chunkDocPrefix  = "chkdoc"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkPrefix, id))
}

// makeEmbeddingKey generates a key for a (chunk, model) embedding pair.
// Format: prefix:chunkID:model
func makeEmbeddingKey(chunkID core.ID, model string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", embeddingPrefix, chunkID, model))
}

// makePartialEmbeddingKey generates a prefix matching every embedding of a chunk.
func makePartialEmbeddingKey(chunkID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", embeddingPrefix, chunkID))
}

// makeChunkDocKey generates a composite key for the document sequence index.
// Format: prefix:documentID:seq
// Seq is written in BigEndian order so lexicographic sort follows sequence order.
func makeChunkDocKey(documentID core.ID, seq int) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, documentID))
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkDocKey generates a prefix matching every index entry of a document.
func makePartialChunkDocKey(documentID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, documentID))
}
