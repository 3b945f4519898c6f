// Package settings owns the persisted settings record described in the
// external-interfaces contract: connection parameters, credentials,
// export preferences, and per-topic buffer-budget overrides. It loads and
// saves the record as JSON and can watch the file for out-of-process edits.
package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/snarg/mqtt-inspect/internal/command"
)

// TopicBufferLimit overrides the default retention budget for messages
// matching an exact topic filter.
type TopicBufferLimit struct {
	TopicFilter string `json:"topic_filter"`
	MaxBytes    int    `json:"max_bytes"`
}

// Settings is the full persisted record.
type Settings struct {
	Hostname      string               `json:"hostname"`
	Port          int                  `json:"port"`
	ClientID      string               `json:"client_id,omitempty"`
	KeepAlive     int                  `json:"keep_alive_seconds"`
	CleanSession  bool                 `json:"clean_session"`
	SessionExpiry *uint32              `json:"session_expiry,omitempty"`
	UseTLS        bool                 `json:"use_tls"`
	AuthMode      command.AuthMode     `json:"auth_mode"`
	Username      string               `json:"username,omitempty"`
	Password      string               `json:"password,omitempty"`
	AuthMethod    string               `json:"auth_method,omitempty"`
	AuthData      string               `json:"auth_data,omitempty"`
	ExportFormat  command.ExportFormat `json:"export_format"`
	ExportPath    string               `json:"export_path"`
	BufferLimits  []TopicBufferLimit   `json:"topic_buffer_limits,omitempty"`
}

// Default returns a Settings record with the same baseline values a fresh
// install would ship: anonymous auth, a 30-second keep-alive, JSON export
// to the working directory.
func Default() Settings {
	return Settings{
		Port:         1883,
		KeepAlive:    30,
		CleanSession: true,
		AuthMode:     command.AuthAnonymous,
		ExportFormat: command.ExportJSON,
		ExportPath:   "./export.json",
	}
}

// Snapshot projects the fields the command parser needs into its
// read-only Snapshot view.
func (s Settings) Snapshot() command.Snapshot {
	return command.Snapshot{
		Hostname:     s.Hostname,
		Port:         s.Port,
		Username:     s.Username,
		Password:     s.Password,
		AuthMode:     s.AuthMode,
		AuthMethod:   s.AuthMethod,
		AuthData:     s.AuthData,
		UseTLS:       s.UseTLS,
		ExportFormat: s.ExportFormat,
		ExportPath:   s.ExportPath,
	}
}

// BufferBudgets flattens BufferLimits into the map shape topicstore.Options
// expects.
func (s Settings) BufferBudgets() map[string]int {
	out := make(map[string]int, len(s.BufferLimits))
	for _, l := range s.BufferLimits {
		out[l.TopicFilter] = l.MaxBytes
	}
	return out
}

// Load reads and parses a settings file. A missing file is not an error:
// the caller gets Default() back so a first run can proceed without one.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s, nil
}

// Save atomically writes s to path: the record is written to a temp file
// in the same directory and renamed into place, so a crash mid-write never
// leaves a truncated settings file behind.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("settings: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("settings: rename into place: %w", err)
	}
	return nil
}
