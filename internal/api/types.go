package api

import (
	"time"

	"mcpool/internal/config"
	"mcpool/internal/session"
)

// ServerSelection names the configuration a request runs against: either a
// profile from the config file or an inline server set.
type ServerSelection struct {
	Profile string           `json:"profile,omitempty"`
	Servers config.ServerSet `json:"servers,omitempty"`
}

// CapabilitiesRequest is the body of POST /api/v1/capabilities.
type CapabilitiesRequest struct {
	ServerSelection
	UserID    string `json:"userId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// CapabilitiesResponse lists the tools available for a configuration.
type CapabilitiesResponse struct {
	Fingerprint string               `json:"fingerprint"`
	Count       int                  `json:"count"`
	Tools       []session.Capability `json:"tools"`
}

// CallToolRequest is the body of POST /api/v1/tools/call.
type CallToolRequest struct {
	ServerSelection
	Server    string                 `json:"server" binding:"required"`
	Tool      string                 `json:"tool" binding:"required"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// RefreshRequest is the body of POST /api/v1/sessions/refresh.
type RefreshRequest struct {
	ServerSelection
	Server string `json:"server" binding:"required"`
}

// CleanupResponse reports the outcome of a cleanup call.
type CleanupResponse struct {
	Removed bool `json:"removed"`
}

// ProfileInfo describes one configured profile.
type ProfileInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
	Servers     []string `json:"servers" yaml:"servers"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
