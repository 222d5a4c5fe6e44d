package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "token in URL",
			message: "downloading https://example.com/client.jar?token=abc123&v=2",
			want:    "token=***&v=2",
		},
		{
			name:    "no token",
			message: "downloading https://example.com/client.jar",
			want:    "downloading https://example.com/client.jar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.message)
			if !strings.Contains(got, tt.want) {
				t.Errorf("redactSensitive() = %q, want to contain %q", got, tt.want)
			}
			if strings.Contains(got, "abc123") {
				t.Errorf("redactSensitive() = %q, token leaked", got)
			}
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetLogLevel(LogLevelWarn)
	defer SetLogLevel(LogLevelWarn)

	Debug("hidden debug message")
	Warn("visible warning")

	out := buf.String()
	if strings.Contains(out, "hidden debug message") {
		t.Error("debug message logged at warn level")
	}
	if !strings.Contains(out, "visible warning") {
		t.Error("warning not logged at warn level")
	}
}
