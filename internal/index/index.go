// Package index maintains the vector index over the example corpus and
// serves nearest-neighbour retrieval for prompt composition.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register sqlite-vec with the mattn/go-sqlite3 driver so every
	// connection can use vec0 tables and distance functions.
	vec.Auto()
}

// Entry is one indexed example as it appears in a composed prompt.
type Entry struct {
	Question string
	SQLQuery string
}

// Flatten renders the entry in the single-line form retrieval returns.
func (e Entry) Flatten() string {
	return e.Question + " | " + e.SQLQuery
}

// encodeVector serializes an embedding as the little-endian float32
// blob sqlite-vec expects.
func encodeVector(vec []float32) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	_ = binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec)
	return vec
}
