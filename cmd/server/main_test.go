package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/echochat/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		check   func(t *testing.T, out string)
	}{
		{
			name:    "json by default",
			environ: map[string]string{},
			check: func(t *testing.T, out string) {
				var line map[string]any
				require.NoError(t, json.Unmarshal([]byte(out), &line))
				assert.Equal(t, "hello", line["msg"])
			},
		},
		{
			name:    "text in dev mode",
			environ: map[string]string{"DEV_MODE": "true"},
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "time="), out)
				assert.Contains(t, out, "msg=hello")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse(env.Options{Environment: tt.environ})
			require.NoError(t, err)

			var buf bytes.Buffer
			newLogger(&buf, cfg).Info("hello")
			tt.check(t, buf.String())
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "18931")
	t.Setenv("STATIC_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Chdir(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, &out))
	assert.Contains(t, out.String(), "AI client not configured")
}
