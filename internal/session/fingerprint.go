package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"mcpool/internal/config"
)

// Fingerprint returns the identity of a server configuration. Map keys are
// emitted in sorted order by encoding/json, so two structurally equal sets
// yield the same value regardless of how they were built.
func Fingerprint(servers config.ServerSet) (string, error) {
	if servers == nil {
		servers = config.ServerSet{}
	}
	data, err := json.Marshal(servers)
	if err != nil {
		return "", fmt.Errorf("failed to encode server configuration: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ShortFingerprint truncates a fingerprint for log lines and tables.
func ShortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
