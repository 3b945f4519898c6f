package settings

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/snarg/mqtt-inspect/internal/command"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(s, Default()) {
		t.Fatalf("s = %+v, want Default()", s)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	original := Settings{
		Hostname:     "broker.local",
		Port:         8883,
		KeepAlive:    60,
		CleanSession: false,
		UseTLS:       true,
		AuthMode:     command.AuthUserPass,
		Username:     "alice",
		Password:     "secret",
		ExportFormat: command.ExportTxt,
		ExportPath:   "/tmp/out.txt",
		BufferLimits: []TopicBufferLimit{{TopicFilter: "sensors/kitchen", MaxBytes: 4096}},
	}

	if err := Save(path, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Fatalf("loaded = %+v, want %+v", loaded, original)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := Save(path, Settings{Hostname: "first"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(path, Settings{Hostname: "second"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Hostname != "second" {
		t.Fatalf("Hostname = %q, want second", loaded.Hostname)
	}
}

func TestSnapshotProjection(t *testing.T) {
	s := Settings{Hostname: "h", Port: 1883, Username: "u", AuthMode: command.AuthEnhanced}
	snap := s.Snapshot()
	if snap.Hostname != "h" || snap.Port != 1883 || snap.Username != "u" || snap.AuthMode != command.AuthEnhanced {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBufferBudgets(t *testing.T) {
	s := Settings{BufferLimits: []TopicBufferLimit{
		{TopicFilter: "a", MaxBytes: 10},
		{TopicFilter: "b", MaxBytes: 20},
	}}
	budgets := s.BufferBudgets()
	if budgets["a"] != 10 || budgets["b"] != 20 {
		t.Fatalf("budgets = %+v", budgets)
	}
}
