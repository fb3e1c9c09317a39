package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf, Service: "eventadmin"})
	defer Configure(Config{Level: InfoLevel, Pretty: true, Output: os.Stdout})

	l := Component("poll-scheduler")
	l.Info().Msg("tick")
	Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"component":"poll-scheduler"`) || !strings.Contains(out, `"service":"eventadmin"`) {
		t.Errorf("entry = %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entries must be dropped at info level")
	}
}
