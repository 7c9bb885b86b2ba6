package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"mcpool/internal/client"
	"mcpool/internal/config"
)

// EndpointEnvVar overrides the admin API endpoint for all client commands.
const EndpointEnvVar = "MCPOOL_ENDPOINT"

// GetDefaultEndpoint returns the endpoint from the environment, if set.
func GetDefaultEndpoint() string {
	return os.Getenv(EndpointEnvVar)
}

// DetectEndpoint derives the admin API URL from the server section of the
// configuration in configPath. The built-in defaults are used when the
// configuration cannot be loaded.
func DetectEndpoint(configPath string) string {
	cfg := config.GetDefaultConfig()

	if configPath == "" {
		if p, err := config.GetDefaultConfigPath(); err == nil {
			configPath = p
		}
	}
	if configPath != "" {
		if loaded, err := config.LoadConfig(configPath); err == nil {
			cfg = loaded
		}
	}

	host := cfg.Server.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = config.DefaultHost
	}
	port := cfg.Server.Port
	if port == 0 {
		port = config.DefaultPort
	}

	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// CheckServerRunning verifies that the admin API answers health checks.
func CheckServerRunning(ctx context.Context, c *client.Client) error {
	if err := c.Health(ctx); err != nil {
		if client.IsUnreachable(err) {
			return ClassifyConnectionError(err, c.Endpoint())
		}
		return fmt.Errorf("mcpool server is not responding correctly: %w. Try restarting with: mcpool serve", err)
	}
	return nil
}

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything but "y" or "yes" counts as no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}
