package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/logutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	restore := cliout.SetOutput(&buf)
	defer restore()
	defer func() { _ = cliout.SetFormat(string(cliout.FormatDefault)) }()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "HTTPS://alice@example.com:8443/docs?b=2&a=1#top")
	require.NoError(t, err)
	assert.Contains(t, out, "https://alice@example.com:8443/docs?b=2&a=1#top")
	assert.Contains(t, out, "8443")
	assert.Contains(t, out, "alice")
	assert.Less(t, strings.Index(out, "b "), strings.Index(out, "a "), "query rows keep their order")
}

func TestParseCommandJSON(t *testing.T) {
	out, err := run(t, "parse", "--output", "json", "ftp://files.example.com:2121/pub?x=1")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "ftp", got["scheme"])
	assert.Equal(t, float64(2121), got["port"])
	assert.Equal(t, map[string]interface{}{"x": "1"}, got["query"])
}

func TestParseCommandMalformed(t *testing.T) {
	_, err := run(t, "parse", "http://example.com:99999/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed url")
}

func TestBuildCommandFlags(t *testing.T) {
	out, err := run(t, "build",
		"--scheme", "https", "--host", "example.com", "--port", "443",
		"--path", "/docs", "--query", "b=2", "--query", "a=1", "--query", "flag",
		"--fragment", "intro")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs?b=2&a=1&flag#intro\n", out)
}

func TestBuildCommandOmit(t *testing.T) {
	out, err := run(t, "build", "--host", "example.com", "--port", "8080", "--user", "bob",
		"--path", "/x", "--query", "a=1", "--fragment", "f",
		"--omit-user", "--omit-port", "--omit-fragment")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/x?a=1\n", out)

	out, err = run(t, "build", "--host", "example.com", "--path", "/x", "--omit-host")
	require.NoError(t, err)
	assert.Equal(t, "/x\n", out)
}

func TestBuildCommandFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: https\nhost: example.com\npath: /a\nquery:\n  z: \"1\"\n"), 0o600))

	out, err := run(t, "build", "-f", path, "--host", "example.org", "--query", "y=2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a?z=1&y=2\n", out)
}

func TestBuildCommandJSON(t *testing.T) {
	out, err := run(t, "build", "-o", "json", "--host", "example.com")
	require.NoError(t, err)

	var got buildOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "http://example.com/", got.URL)
	assert.Equal(t, "example.com", got.Components.Host)
}

func TestBuildCommandInvalidPort(t *testing.T) {
	_, err := run(t, "build", "--host", "example.com", "--port", "70000")
	assert.Error(t, err)
}

func TestQueryCommand(t *testing.T) {
	out, err := run(t, "query", "https://example.com/?a=1&b=two+words", "--separator", ";")
	require.NoError(t, err)
	assert.Equal(t, "a=1;b=two+words\n", out)

	out, err = run(t, "query", "https://example.com/?a=1&b=two+words", "b")
	require.NoError(t, err)
	assert.Equal(t, "two words\n", out)

	_, err = run(t, "query", "https://example.com/?a=1", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "https", args: []string{"https://example.com"}},
		{name: "localhost http", args: []string{"--https-only", "http://localhost:3000"}},
		{name: "bad scheme", args: []string{"ftp://example.com"}, wantErr: "must use http"},
		{name: "no host", args: []string{"https://"}, wantErr: "missing host"},
		{name: "https only", args: []string{"--https-only", "http://example.com"}, wantErr: "https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"validate"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "is valid")
		})
	}
}

func TestOpenCommandNoBrowser(t *testing.T) {
	out, err := run(t, "open", "--browser", "none", "HTTPS://example.com:443/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "https://example.com/docs")

	_, err = run(t, "open", "--browser", "none", "mailto:joe@example.com")
	assert.Error(t, err)

	_, err = run(t, "open", "--browser", "lynx", "https://example.com")
	assert.Error(t, err)
}

func TestServeCommandRequiresConfig(t *testing.T) {
	_, err := run(t, "serve")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o600))
	_, err = run(t, "serve", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rules")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0-dev", strings.TrimSpace(out))
}

func TestCheckCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := run(t, "check", "-o", "json", srv.URL+"/start")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, srv.URL+"/end", got["final"])
	assert.Len(t, got["hops"], 2)

	_, err = run(t, "check", "--max-hops", "1", "ftp://example.com/")
	assert.Error(t, err)
}

func TestCheckCommandBreakerRateAndMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, "/down", http.StatusFound)
	}))
	defer srv.Close()

	out, err := run(t, "check", srv.URL+"/down",
		"--rate", "100",
		"--circuit-breaker", "--breaker-failures", "1", "--breaker-timeout", "1m",
		"--metrics")
	require.Error(t, err)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "503")
	assert.Contains(t, out, "urlkit_probe_hop_duration_seconds")
	assert.Contains(t, out, "urlkit_probe_circuit_breaker_state")

	out, err = run(t, "check", "-o", "json", "--metrics", srv.URL+"/down")
	require.Error(t, err)
	assert.NotContains(t, out, "urlkit_probe_", "metrics are not mixed into JSON output")
}

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(fs *pflag.FlagSet)
		args    []string
		want    config.Serve
		wantErr bool
	}{
		{
			name: "overrides",
			setup: func(fs *pflag.FlagSet) {
				fs.String("addr", config.DefaultAddr, "")
				fs.Float64("rate", 0, "")
				fs.Int("burst", 0, "")
			},
			args: []string{"--addr", ":9000", "--rate", "2.5", "--burst", "4"},
			want: config.Serve{Addr: ":9000", RateLimit: 2.5, Burst: 4},
		},
		{
			name: "unchanged keeps file values",
			setup: func(fs *pflag.FlagSet) {
				fs.String("addr", config.DefaultAddr, "")
				fs.Float64("rate", 0, "")
				fs.Int("burst", 0, "")
			},
			want: config.Serve{Addr: ":7000", RateLimit: 1, Burst: 1},
		},
		{
			name:    "rate of wrong type",
			setup:   func(fs *pflag.FlagSet) { fs.String("rate", "", "") },
			args:    []string{"--rate", "fast"},
			wantErr: true,
		},
		{
			name:    "burst of wrong type",
			setup:   func(fs *pflag.FlagSet) { fs.String("burst", "", "") },
			args:    []string{"--burst", "many"},
			wantErr: true,
		},
		{
			name:    "addr of wrong type",
			setup:   func(fs *pflag.FlagSet) { fs.Int("addr", 0, "") },
			args:    []string{"--addr", "9000"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			tt.setup(fs)
			require.NoError(t, fs.Parse(tt.args))

			cfg := config.Serve{Addr: ":7000", RateLimit: 1, Burst: 1}
			err := applyServeFlags(fs, &cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv(logutil.EnvDebug, "")
	defer logutil.SetupLogger(false, false)

	tests := []struct {
		name      string
		args      []string
		wantDebug bool
	}{
		{name: "default", args: nil, wantDebug: false},
		{name: "debug", args: []string{"--log-level", "debug"}, wantDebug: true},
		{name: "debug flag", args: []string{"--debug"}, wantDebug: true},
		{name: "error overrides debug flag", args: []string{"--debug", "--log-level", "error"}, wantDebug: false},
		{name: "unknown name falls back to info", args: []string{"--log-level", "loud"}, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args...), "version", "--quiet")
			_, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logutil.IsDebugEnabled())
		})
	}
}
