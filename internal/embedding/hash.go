// Package embedding provides embedding generation, persistence, and
// nearest-neighbor lookup over tracked tasks.
//
// Embeddings are stored inline on the task record along with metadata that
// includes a content hash of the embeddable text. The hash is the staleness
// check: when a task's title or description changes, the stored hash no
// longer matches and the vector is due for regeneration.
package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash digests a task's embeddable text (title + description).
// The digest is computed over the raw text with surrounding whitespace
// trimmed, so cosmetic retouching of padding does not invalidate a vector.
func ContentHash(title, description string) string {
	text := strings.TrimSpace(title) + "\n" + strings.TrimSpace(description)
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
