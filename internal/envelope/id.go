package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// documentNamespace scopes the UUIDv5 identity of documents. Changing it
// would orphan every stored blob, so it is fixed for the life of the service.
var documentNamespace = uuid.MustParse("8f9e4b6c-2d71-4a35-b0c4-5be31a0e7f29")

// ContentHash returns the SHA-256 hex digest of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// DocumentID derives a document's identity from who uploaded what, where.
// Identical (owner, path, content) triples always map to the same id, which
// is what makes re-uploads idempotent and gives racing uploads a single row
// to collide on.
func DocumentID(ownerID, filepath, contentHash string) string {
	name := strings.Join([]string{ownerID, filepath, contentHash}, "\x00")
	return uuid.NewSHA1(documentNamespace, []byte(name)).String()
}
