package formatting

import (
	"encoding/json"
	"fmt"

	"mcpool/internal/api"
	"mcpool/internal/session"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter prints listings as YAML documents.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatSessions(records []session.ContextRecord) (string, error) {
	if records == nil {
		records = []session.ContextRecord{}
	}
	return marshalYAML(records)
}

func (f *YAMLFormatter) FormatPools(pools []session.PoolStats) (string, error) {
	if pools == nil {
		pools = []session.PoolStats{}
	}
	return marshalYAML(pools)
}

func (f *YAMLFormatter) FormatProfiles(profiles []api.ProfileInfo) (string, error) {
	if profiles == nil {
		profiles = []api.ProfileInfo{}
	}
	return marshalYAML(profiles)
}

// FormatTools goes through JSON first so tool schemas keep their wire field names.
func (f *YAMLFormatter) FormatTools(tools []session.Capability) (string, error) {
	if tools == nil {
		tools = []session.Capability{}
	}
	raw, err := json.Marshal(tools)
	if err != nil {
		return "", fmt.Errorf("failed to encode tools: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to decode tools: %w", err)
	}
	return marshalYAML(generic)
}

func marshalYAML(v interface{}) (string, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return string(b), nil
}
