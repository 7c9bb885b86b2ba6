package session

import "time"

type contextKey struct {
	userID    string
	projectID string
}

// ContextRecord remembers which pool last served a (user, project) pair.
type ContextRecord struct {
	UserID      string    `json:"userId" yaml:"userId"`
	ProjectID   string    `json:"projectId" yaml:"projectId"`
	PoolID      string    `json:"poolId" yaml:"poolId"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	LastUsed    time.Time `json:"lastUsed" yaml:"lastUsed"`

	// Pool is the pool that served the pair. It may since have been closed.
	Pool *Pool `json:"-" yaml:"-"`
}
