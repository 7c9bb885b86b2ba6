package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServerSet(t *testing.T) {
	tests := []struct {
		name       string
		set        ServerSet
		wantFields []string
	}{
		{
			name:       "empty set",
			set:        ServerSet{},
			wantFields: []string{"servers"},
		},
		{
			name: "valid mixed transports",
			set: ServerSet{
				"a": {Transport: TransportStdio, Command: "npx"},
				"b": {Transport: TransportSSE, URL: "http://x/sse"},
				"c": {Transport: TransportStreamableHTTP, URL: "http://x/mcp"},
			},
		},
		{
			name: "stdio without command",
			set: ServerSet{
				"a": {Transport: TransportStdio},
			},
			wantFields: []string{"servers.a.command"},
		},
		{
			name: "remote without url and unknown transport",
			set: ServerSet{
				"a": {Transport: TransportSSE},
				"b": {Transport: "websocket", URL: "ws://x"},
				"c": {},
			},
			wantFields: []string{"servers.a.url", "servers.b.transport", "servers.c.transport"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateServerSet(tt.set, "servers")

			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, ValidateConfig(cfg))

	cfg.Server.Port = 70000
	cfg.Logging.Format = "xml"
	cfg.Sessions.Teardown = "never"
	cfg.Sessions.EstablishConcurrency = 0

	err := ValidateConfig(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 4)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestServerSet_Enabled(t *testing.T) {
	set := ServerSet{
		"on":  {Transport: TransportStdio, Command: "a"},
		"off": {Transport: TransportStdio, Command: "b", Disabled: true},
	}

	enabled := set.Enabled()
	assert.Equal(t, []string{"on"}, enabled.Names())
	assert.Len(t, set, 2, "original set is not modified")
}
