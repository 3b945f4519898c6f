// Package command implements the colon-prefixed command grammar: a pure
// function from an input line plus a settings snapshot to a typed outcome.
// Nothing here executes a command or touches the network — parsing only.
package command

// AuthMode mirrors the persisted settings' authentication mode.
type AuthMode string

const (
	AuthAnonymous AuthMode = "anonymous"
	AuthUserPass  AuthMode = "userpass"
	AuthEnhanced  AuthMode = "enhanced"
)

// ExportFormat is one of the two bulk-export file formats.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportTxt  ExportFormat = "txt"
)

// Snapshot is the read-only settings view the parser consults to fill in
// defaults for arguments a command line omits. Parsing never mutates it.
type Snapshot struct {
	Hostname     string
	Port         int
	Username     string
	Password     string
	AuthMode     AuthMode
	AuthMethod   string
	AuthData     string
	UseTLS       bool
	ExportFormat ExportFormat
	ExportPath   string
}
