package formatting

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mcpool/internal/api"
	"mcpool/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecords() []session.ContextRecord {
	return []session.ContextRecord{
		{UserID: "1", ProjectID: "10", PoolID: "7f9c2ba4-e88f-11ea-adc1-0242ac120002", Fingerprint: strings.Repeat("ab", 32), LastUsed: fixedNow.Add(-5 * time.Minute)},
		{UserID: "2", ProjectID: "10", PoolID: "7f9c2ba4-e88f-11ea-adc1-0242ac120002", Fingerprint: strings.Repeat("ab", 32), LastUsed: fixedNow.Add(-2 * time.Hour)},
	}
}

func samplePools() []session.PoolStats {
	return []session.PoolStats{{
		ID:           "7f9c2ba4-e88f-11ea-adc1-0242ac120002",
		Fingerprint:  strings.Repeat("cd", 32),
		Servers:      []string{"files", "playwright"},
		OpenSessions: []string{"playwright"},
		ToolCount:    21,
		CreatedAt:    fixedNow.Add(-3 * 24 * time.Hour),
	}}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "json", "yaml"} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(in), f)
	}

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestTableFormatter_Sessions(t *testing.T) {
	f := &TableFormatter{options: Options{NoColor: true}, now: func() time.Time { return fixedNow }}

	out, err := f.FormatSessions(sampleRecords())
	require.NoError(t, err)

	assert.Contains(t, out, "USER")
	assert.Contains(t, out, "LAST USED")
	assert.Contains(t, out, "7f9c2ba4")
	assert.NotContains(t, out, "7f9c2ba4-e88f")
	assert.Contains(t, out, "abababababab")
	assert.Contains(t, out, "(5m ago)")
	assert.Contains(t, out, "(2h ago)")
	assert.Contains(t, out, "Total: 2 sessions")
}

func TestTableFormatter_Pools(t *testing.T) {
	f := &TableFormatter{options: Options{NoColor: true}, now: func() time.Time { return fixedNow }}

	out, err := f.FormatPools(samplePools())
	require.NoError(t, err)

	assert.Contains(t, out, "files, playwright")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "21")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "3d")
}

func TestTableFormatter_Empty(t *testing.T) {
	f := NewFormatter(Options{Format: FormatTable, NoColor: true})

	out, err := f.FormatSessions(nil)
	require.NoError(t, err)
	assert.Equal(t, "No active sessions\n", out)

	out, err = f.FormatPools(nil)
	require.NoError(t, err)
	assert.Equal(t, "No connection pools\n", out)

	out, err = f.FormatProfiles(nil)
	require.NoError(t, err)
	assert.Equal(t, "No profiles configured\n", out)
}

func TestTableFormatter_Profiles(t *testing.T) {
	f := NewFormatter(Options{NoColor: true})

	out, err := f.FormatProfiles([]api.ProfileInfo{{Name: "browser", Fingerprint: "0123456789abcdef", Servers: []string{"playwright"}}})
	require.NoError(t, err)
	assert.Contains(t, out, "browser")
	assert.Contains(t, out, "0123456789ab")
	assert.Contains(t, out, "Total: 1 profiles")
}

func TestJSONFormatter(t *testing.T) {
	f := NewFormatter(Options{Format: FormatJSON})

	out, err := f.FormatSessions(sampleRecords())
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1", decoded[0]["userId"])
	assert.NotContains(t, decoded[0], "Pool")

	out, err = f.FormatPools(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestYAMLFormatter(t *testing.T) {
	f := NewFormatter(Options{Format: FormatYAML})

	out, err := f.FormatPools(samplePools())
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 21, decoded[0]["toolCount"])
	assert.Equal(t, []interface{}{"playwright"}, decoded[0]["openSessions"])
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{3*time.Hour + 10*time.Minute, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanizeDuration(tt.in))
	}
}

func sampleTools() []session.Capability {
	return []session.Capability{
		{Server: "playwright", Tool: mcp.NewTool("browser_navigate", mcp.WithDescription("Navigate to a URL\nSecond line is dropped"))},
		{Server: "playwright", Tool: mcp.NewTool("browser_snapshot", mcp.WithDescription(strings.Repeat("x", 80)))},
	}
}

func TestTableFormatter_Tools(t *testing.T) {
	f := &TableFormatter{options: Options{NoColor: true}}

	out, err := f.FormatTools(sampleTools())
	require.NoError(t, err)
	assert.Contains(t, out, "browser_navigate")
	assert.Contains(t, out, "Navigate to a URL")
	assert.NotContains(t, out, "Second line")
	assert.Contains(t, out, strings.Repeat("x", 57)+"...")
	assert.Contains(t, out, "Total: 2 tools")

	out, err = f.FormatTools(nil)
	require.NoError(t, err)
	assert.Equal(t, "No tools available\n", out)
}

func TestYAMLFormatter_ToolsUseWireNames(t *testing.T) {
	out, err := NewFormatter(Options{Format: FormatYAML}).FormatTools(sampleTools())
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "playwright", decoded[0]["server"])
	tool, ok := decoded[0]["tool"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "browser_navigate", tool["name"])
	assert.Contains(t, tool, "inputSchema")
}
