package remote

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/racklinehq/rackline/internal/league"
)

// PayloadBytes serializes the portable form of a document together with
// its revision marker. This is the envelope every networked strategy
// stores remotely.
func PayloadBytes(doc *league.Document, updatedAt int64) ([]byte, error) {
	portable := doc.Portable()
	portable.UpdatedAt = updatedAt
	data, err := json.Marshal(portable)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses a remote envelope leniently. Shape problems map to
// the validator's invalid-format error so the reconciler surfaces them as
// validation failures rather than retrying them as transient faults. Full
// validation still runs before the document replaces local state.
func DecodePayload(data []byte) (*league.Document, error) {
	var doc league.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode remote payload: %w", league.ErrInvalidFormat)
	}
	return &doc, nil
}

// ContentHash returns the content identifier used for write suppression:
// a hex SHA-256 of the serialized envelope.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
