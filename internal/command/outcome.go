package command

// Kind identifies which of the four Outcome variants is populated. Go has
// no native sum type, so Outcome carries a Kind discriminant plus the
// payload for that kind; callers are expected to switch on Kind the way
// they'd switch on a tagged union.
type Kind int

const (
	// KindCommand is a recognized colon-command with parsed arguments.
	KindCommand Kind = iota
	// KindSearchTerm is a bare (non-colon) input line.
	KindSearchTerm
	// KindTopicSearch is a `/substring` topic-search line.
	KindTopicSearch
	// KindFailure is a parse failure; Reason explains why.
	KindFailure
)

// CommandName enumerates the recognized colon-command names.
type CommandName string

const (
	CmdConnect       CommandName = "connect"
	CmdDisconnect    CommandName = "disconnect"
	CmdExport        CommandName = "export"
	CmdFilter        CommandName = "filter"
	CmdClear         CommandName = "clear"
	CmdHelp          CommandName = "help"
	CmdPause         CommandName = "pause"
	CmdResume        CommandName = "resume"
	CmdCopy          CommandName = "copy"
	CmdExpand        CommandName = "expand"
	CmdCollapse      CommandName = "collapse"
	CmdSettings      CommandName = "settings"
	CmdSearch        CommandName = "search"
	CmdView          CommandName = "view"
	CmdSetUser       CommandName = "setuser"
	CmdSetPass       CommandName = "setpass"
	CmdSetAuthMode   CommandName = "setauthmode"
	CmdSetAuthMethod CommandName = "setauthmethod"
	CmdSetAuthData   CommandName = "setauthdata"
	CmdSetUseTLS     CommandName = "setusetls"
	CmdDeleteTopic   CommandName = "deletetopic"
)

// Command is the parsed, typed payload of a KindCommand outcome. Not every
// field is populated for every Name — see the per-command parse functions
// in grammar.go for which ones are meaningful.
type Command struct {
	Name CommandName

	// connect
	Host     string
	Port     int
	Username string
	Password string

	// export / export all
	Format ExportFormat
	Path   string
	All    bool

	// filter / help / search / setuser / setpass / setauthmethod / setauthdata
	Text string

	// view
	ViewMode string

	// setauthmode
	Mode AuthMode

	// setusetls
	UseTLS bool

	// deletetopic
	TopicPattern string
	Confirmed    bool
}

// Outcome is the result of parsing one input line.
type Outcome struct {
	Kind Kind

	Command    Command
	SearchTerm string
	TopicQuery string
	Reason     string
}

func commandOutcome(c Command) Outcome {
	return Outcome{Kind: KindCommand, Command: c}
}

func searchTermOutcome(term string) Outcome {
	return Outcome{Kind: KindSearchTerm, SearchTerm: term}
}

func topicSearchOutcome(query string) Outcome {
	return Outcome{Kind: KindTopicSearch, TopicQuery: query}
}

func failureOutcome(reason string) Outcome {
	return Outcome{Kind: KindFailure, Reason: reason}
}
