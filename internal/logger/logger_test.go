package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	// Reinitialize logger with test output
	logger = nil
	InitLogger(level, true)

	fn()

	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:     "info log",
			level:    "info",
			logFn:    func() { Info("test info message") },
			contains: []string{"test info message"},
		},
		{
			name:     "debug log with debug level",
			level:    "debug",
			logFn:    func() { Debug("test debug message") },
			contains: []string{"test debug message", "level=DEBUG"},
		},
		{
			name:     "debug log with info level",
			level:    "info",
			logFn:    func() { Debug("test debug message") },
			excludes: []string{"test debug message"},
		},
		{
			name:     "warn log with fields",
			level:    "warn",
			logFn:    func() { Warn("test warning", Fields{"repo": "owner/repo", "cycle": 2}) },
			contains: []string{"test warning", "level=WARN", "repo=owner/repo", "cycle=2"},
		},
		{
			name:     "formatted error",
			level:    "error",
			logFn:    func() { Errorf("failed to obtain: %s", "depot.manifest") },
			contains: []string{"failed to obtain: depot.manifest", "level=ERROR"},
		},
		{
			name:     "success log",
			level:    "info",
			logFn:    func() { Success("packaged", Fields{"appid": "400"}) },
			contains: []string{"packaged", "status=success", "appid=400"},
		},
		{
			name:     "unknown level falls back to info",
			level:    "shouty",
			logFn:    func() { Info("still logged") },
			contains: []string{"still logged"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t, tt.level, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}
