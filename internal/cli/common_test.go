package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcpool/internal/client"
	"mcpool/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEndpoint_FromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "server:\n  host: 127.0.0.1\n  port: 9100\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(cfg), 0o600))

	assert.Equal(t, "http://127.0.0.1:9100", DetectEndpoint(dir))
}

func TestDetectEndpoint_WildcardHostAndDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("server:\n  host: 0.0.0.0\n"), 0o600))
	assert.Equal(t, "http://localhost:8095", DetectEndpoint(dir))

	assert.Equal(t, "http://localhost:8095", DetectEndpoint(t.TempDir()))
}

func TestCommandFlags_ResolveEndpoint(t *testing.T) {
	flags := &CommandFlags{Endpoint: "http://remote:1234"}
	assert.Equal(t, "http://remote:1234", flags.ResolveEndpoint())

	flags = &CommandFlags{ConfigPath: t.TempDir()}
	assert.Equal(t, "http://localhost:8095", flags.ResolveEndpoint())
}

func TestCommandFlags_FormatOptions(t *testing.T) {
	opts, err := (&CommandFlags{OutputFormat: "json", NoColor: true}).FormatOptions()
	require.NoError(t, err)
	assert.Equal(t, "json", string(opts.Format))
	assert.True(t, opts.NoColor)

	_, err = (&CommandFlags{OutputFormat: "wide"}).FormatOptions()
	assert.Error(t, err)
}

func TestGetDefaultEndpoint(t *testing.T) {
	t.Setenv(EndpointEnvVar, "http://env:8095")
	assert.Equal(t, "http://env:8095", GetDefaultEndpoint())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.input), &out, "Proceed?"), "input %q", tt.input)
		assert.Equal(t, "Proceed? [y/N] ", out.String())
	}
}

func TestCheckServerRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	assert.NoError(t, CheckServerRunning(context.Background(), client.New(srv.URL)))

	endpoint := srv.URL
	srv.Close()

	err := CheckServerRunning(context.Background(), client.New(endpoint))
	require.Error(t, err)
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, endpoint, connErr.Endpoint)
	assert.Equal(t, ConnectionErrorNetwork, connErr.Type)
	assert.Contains(t, err.Error(), "mcpool serve")
}

func TestFormatMessages(t *testing.T) {
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
	assert.Equal(t, "✓ done", FormatSuccess("done"))
	assert.Equal(t, "⚠ careful", FormatWarning("careful"))
}
