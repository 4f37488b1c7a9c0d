package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartfill.log")
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatal(err)
	}
	WithComponent("test").Debug().Str("file", "a.pdf").Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"component":"test"`, `"file":"a.pdf"`, `"message":"hello"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log line %s missing %s", data, want)
		}
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetVerbose(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	SetVerbose()
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v", zerolog.GlobalLevel())
	}
}
