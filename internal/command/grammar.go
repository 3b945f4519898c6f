package command

import (
	"regexp"
	"strconv"
	"strings"
)

// hostPortPattern matches `host:port` where host is a DNS label sequence or
// a dotted-quad IPv4 address; port range is checked separately since a
// regex-only bound is unreadable.
var hostPortPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*|(\d{1,3}\.){3}\d{1,3}):(\d+)$`)

// Parse transforms one input line into a typed Outcome, consulting snap
// only to fill in defaults for arguments the line leaves out (the
// zero-argument forms, and the host or credentials a shorter connect
// omits). Parse never
// mutates snap and has no side effects.
func Parse(line string, snap Snapshot) Outcome {
	if strings.HasPrefix(line, "/") {
		query := strings.TrimSpace(line[1:])
		if query == "" {
			return failureOutcome("topic search requires a non-empty substring")
		}
		return topicSearchOutcome(query)
	}

	if !strings.HasPrefix(line, ":") {
		return searchTermOutcome(strings.TrimSpace(line))
	}

	tokens := tokenize(line[1:])
	if len(tokens) == 0 {
		return failureOutcome("empty command")
	}
	name := CommandName(strings.ToLower(tokens[0]))
	args := tokens[1:]

	switch name {
	case CmdConnect:
		return parseConnect(args, snap)
	case CmdDisconnect:
		return parseZeroArg(CmdDisconnect, args)
	case CmdExport:
		return parseExport(args, snap)
	case CmdFilter:
		return parseOptionalText(CmdFilter, args)
	case CmdClear:
		return parseZeroArg(CmdClear, args)
	case CmdHelp:
		return parseOptionalText(CmdHelp, args)
	case CmdPause, CmdResume, CmdCopy, CmdExpand, CmdCollapse, CmdSettings:
		return parseZeroArg(name, args)
	case CmdSearch:
		return parseOptionalText(CmdSearch, args)
	case CmdView:
		return parseView(args)
	case CmdSetUser:
		return parseRequiredText(CmdSetUser, args)
	case CmdSetPass:
		return parseRequiredText(CmdSetPass, args)
	case CmdSetAuthMode:
		return parseSetAuthMode(args)
	case CmdSetAuthMethod:
		return parseRequiredText(CmdSetAuthMethod, args)
	case CmdSetAuthData:
		return parseRequiredText(CmdSetAuthData, args)
	case CmdSetUseTLS:
		return parseSetUseTLS(args)
	case CmdDeleteTopic:
		return parseDeleteTopic(args)
	default:
		return failureOutcome("unrecognized command: " + string(name))
	}
}

func parseZeroArg(name CommandName, args []string) Outcome {
	if len(args) != 0 {
		return failureOutcome(string(name) + " takes no arguments")
	}
	return commandOutcome(Command{Name: name})
}

func parseOptionalText(name CommandName, args []string) Outcome {
	switch len(args) {
	case 0:
		return commandOutcome(Command{Name: name})
	case 1:
		return commandOutcome(Command{Name: name, Text: args[0]})
	default:
		return failureOutcome(string(name) + " takes at most one argument")
	}
}

func parseRequiredText(name CommandName, args []string) Outcome {
	if len(args) != 1 {
		return failureOutcome(string(name) + " requires exactly one argument")
	}
	return commandOutcome(Command{Name: name, Text: args[0]})
}

func parseConnect(args []string, snap Snapshot) Outcome {
	switch len(args) {
	case 0:
		if snap.Hostname == "" {
			return failureOutcome("connect with no arguments requires a configured hostname")
		}
		return commandOutcome(Command{
			Name: CmdConnect, Host: snap.Hostname, Port: snap.Port,
			Username: snap.Username, Password: snap.Password,
		})
	case 1:
		if host, port, ok := splitHostPort(args[0]); ok {
			return commandOutcome(Command{
				Name: CmdConnect, Host: host, Port: port,
				Username: snap.Username, Password: snap.Password,
			})
		}
		if snap.Hostname == "" {
			return failureOutcome("connect with a bare username requires a configured hostname")
		}
		return commandOutcome(Command{
			Name: CmdConnect, Host: snap.Hostname, Port: snap.Port,
			Username: args[0], Password: snap.Password,
		})
	case 2:
		if host, port, ok := splitHostPort(args[0]); ok {
			return commandOutcome(Command{
				Name: CmdConnect, Host: host, Port: port,
				Username: args[1], Password: snap.Password,
			})
		}
		if snap.Hostname == "" {
			return failureOutcome("connect(username, password) requires a configured hostname")
		}
		return commandOutcome(Command{
			Name: CmdConnect, Host: snap.Hostname, Port: snap.Port,
			Username: args[0], Password: args[1],
		})
	case 3:
		host, port, ok := splitHostPort(args[0])
		if !ok {
			return failureOutcome("connect's first argument must be host:port when three arguments are given")
		}
		return commandOutcome(Command{
			Name: CmdConnect, Host: host, Port: port,
			Username: args[1], Password: args[2],
		})
	default:
		return failureOutcome("connect takes at most three arguments")
	}
}

func splitHostPort(s string) (host string, port int, ok bool) {
	m := hostPortPattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, false
	}
	idx := strings.LastIndex(s, ":")
	host = s[:idx]
	p, err := strconv.Atoi(s[idx+1:])
	if err != nil || p < 1 || p > 65535 {
		return "", 0, false
	}
	return host, p, true
}

func parseExport(args []string, snap Snapshot) Outcome {
	if len(args) == 0 {
		if snap.ExportFormat == "" || snap.ExportPath == "" {
			return failureOutcome("export with no arguments requires a configured format and path")
		}
		return commandOutcome(Command{Name: CmdExport, Format: snap.ExportFormat, Path: snap.ExportPath})
	}
	if args[0] == "all" {
		rest := args[1:]
		switch len(rest) {
		case 0:
			if snap.ExportFormat == "" || snap.ExportPath == "" {
				return failureOutcome("export all with no arguments requires a configured format and path")
			}
			return commandOutcome(Command{Name: CmdExport, All: true, Format: snap.ExportFormat, Path: snap.ExportPath})
		case 2:
			format, ok := parseExportFormat(rest[0])
			if !ok {
				return failureOutcome("export format must be json or txt")
			}
			return commandOutcome(Command{Name: CmdExport, All: true, Format: format, Path: rest[1]})
		default:
			return failureOutcome("export all takes zero or two arguments")
		}
	}
	if len(args) != 2 {
		return failureOutcome("export takes zero or two arguments")
	}
	format, ok := parseExportFormat(args[0])
	if !ok {
		return failureOutcome("export format must be json or txt")
	}
	return commandOutcome(Command{Name: CmdExport, Format: format, Path: args[1]})
}

func parseExportFormat(s string) (ExportFormat, bool) {
	switch strings.ToLower(s) {
	case "json":
		return ExportJSON, true
	case "txt":
		return ExportTxt, true
	default:
		return "", false
	}
}

func parseView(args []string) Outcome {
	if len(args) != 1 {
		return failureOutcome("view requires exactly one argument")
	}
	mode := strings.ToLower(args[0])
	switch mode {
	case "raw", "json", "image", "video", "hex":
		return commandOutcome(Command{Name: CmdView, ViewMode: mode})
	default:
		return failureOutcome("view mode must be one of raw, json, image, video, hex")
	}
}

func parseSetAuthMode(args []string) Outcome {
	if len(args) != 1 {
		return failureOutcome("setauthmode requires exactly one argument")
	}
	switch AuthMode(strings.ToLower(args[0])) {
	case AuthAnonymous:
		return commandOutcome(Command{Name: CmdSetAuthMode, Mode: AuthAnonymous})
	case AuthUserPass:
		return commandOutcome(Command{Name: CmdSetAuthMode, Mode: AuthUserPass})
	case AuthEnhanced:
		return commandOutcome(Command{Name: CmdSetAuthMode, Mode: AuthEnhanced})
	default:
		return failureOutcome("auth mode must be one of anonymous, userpass, enhanced")
	}
}

func parseSetUseTLS(args []string) Outcome {
	if len(args) != 1 {
		return failureOutcome("setusetls requires exactly one argument")
	}
	switch strings.ToLower(args[0]) {
	case "true":
		return commandOutcome(Command{Name: CmdSetUseTLS, UseTLS: true})
	case "false":
		return commandOutcome(Command{Name: CmdSetUseTLS, UseTLS: false})
	default:
		return failureOutcome("setusetls argument must be true or false")
	}
}

func parseDeleteTopic(args []string) Outcome {
	if len(args) < 1 || len(args) > 2 {
		return failureOutcome("deletetopic requires a topic and an optional confirm flag")
	}
	pattern := args[0]
	if !validDeleteTopicPattern(pattern) {
		return failureOutcome("deletetopic pattern may only use + as a full level or # as a trailing level")
	}
	confirmed := false
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "true", "confirm", "yes":
			confirmed = true
		case "false", "no":
			confirmed = false
		default:
			return failureOutcome("deletetopic confirm flag must be a recognizable boolean")
		}
	}
	return commandOutcome(Command{Name: CmdDeleteTopic, TopicPattern: pattern, Confirmed: confirmed})
}

// validDeleteTopicPattern enforces MQTT wildcard placement rules: `+` may
// only appear as an entire level, `#` may only appear as the final level.
func validDeleteTopicPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	levels := strings.Split(pattern, "/")
	for i, level := range levels {
		switch {
		case level == "+":
			continue
		case level == "#":
			if i != len(levels)-1 {
				return false
			}
		case strings.ContainsAny(level, "+#"):
			return false
		}
	}
	return true
}
