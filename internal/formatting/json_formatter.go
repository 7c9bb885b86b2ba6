package formatting

import (
	"encoding/json"
	"fmt"

	"mcpool/internal/api"
	"mcpool/internal/session"
)

// JSONFormatter prints listings as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatSessions(records []session.ContextRecord) (string, error) {
	if records == nil {
		records = []session.ContextRecord{}
	}
	return marshalJSON(records)
}

func (f *JSONFormatter) FormatPools(pools []session.PoolStats) (string, error) {
	if pools == nil {
		pools = []session.PoolStats{}
	}
	return marshalJSON(pools)
}

func (f *JSONFormatter) FormatProfiles(profiles []api.ProfileInfo) (string, error) {
	if profiles == nil {
		profiles = []api.ProfileInfo{}
	}
	return marshalJSON(profiles)
}

func (f *JSONFormatter) FormatTools(tools []session.Capability) (string, error) {
	if tools == nil {
		tools = []session.Capability{}
	}
	return marshalJSON(tools)
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(b) + "\n", nil
}
