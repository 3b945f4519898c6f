// Command mqtt-inspect wires the inspection engine together and drives it
// from stdin: a line-oriented command loop over the same command grammar a
// GUI front-end would use.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/mqtt-inspect/internal/command"
	"github.com/snarg/mqtt-inspect/internal/config"
	"github.com/snarg/mqtt-inspect/internal/correlation"
	"github.com/snarg/mqtt-inspect/internal/debugapi"
	"github.com/snarg/mqtt-inspect/internal/export"
	"github.com/snarg/mqtt-inspect/internal/ingestcoord"
	"github.com/snarg/mqtt-inspect/internal/mqttclient"
	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
	"github.com/snarg/mqtt-inspect/internal/navcursor"
	"github.com/snarg/mqtt-inspect/internal/settings"
	"github.com/snarg/mqtt-inspect/internal/topicdelete"
	"github.com/snarg/mqtt-inspect/internal/topicstore"
	"github.com/snarg/mqtt-inspect/internal/topictree"
)

var (
	version = "dev"
	commit  = "unknown"
)

// engine holds every live collaborator the command loop dispatches against.
// It is the in-process stand-in for what a GUI process would otherwise own.
type engine struct {
	ctx      context.Context
	cfg      *config.Config
	settings *settings.Watcher
	log      zerolog.Logger

	store       *topicstore.Store
	tree        *topictree.Tree
	correlation *correlation.Tracker
	sweeper     *correlation.Sweeper
	coordinator *ingestcoord.Coordinator
	mqtt        *mqttclient.Client
}

func main() {
	var overrides config.Overrides
	var showVersion bool
	flag.StringVar(&overrides.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	flag.StringVar(&overrides.SettingsPath, "settings", "", "Path to the persisted settings JSON file")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("mqtt-inspect %s (commit=%s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		bootstrapLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrapLog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Str("commit", commit).Msg("mqtt-inspect starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initial, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsPath).Msg("failed to load settings")
	}

	e := &engine{
		ctx:         ctx,
		cfg:         cfg,
		log:         log,
		store:       topicstore.New(topicstore.Options{DefaultBudget: defaultBudget, Overrides: initial.BufferBudgets(), Log: log.With().Str("component", "topicstore").Logger()}),
		tree:        topictree.New(),
		correlation: correlation.New(correlation.Options{Log: log.With().Str("component", "correlation").Logger()}),
	}
	e.settings = settings.NewWatcher(cfg.SettingsPath, initial, log.With().Str("component", "settings").Logger(), e.onSettingsReload)
	if err := e.settings.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start settings watcher")
	}
	defer e.settings.Stop()

	e.coordinator = ingestcoord.New(ingestcoord.Options{
		Store:          e.store,
		Tree:           e.tree,
		Correlation:    e.correlation,
		CorrelationTTL: correlation.DefaultTTL,
	})

	e.sweeper = correlation.NewSweeper(e.correlation, time.Minute, log.With().Str("component", "correlation").Logger())
	e.sweeper.Start()
	defer e.sweeper.Stop()

	s := e.settings.Current()
	if s.Hostname != "" {
		if err := e.connect(s); err != nil {
			log.Warn().Err(err).Msg("initial connect failed; use :connect to retry")
		}
	} else {
		log.Info().Msg("no hostname configured; use :connect host:port to begin")
	}
	if e.mqtt != nil {
		defer e.mqtt.Close()
	}

	var debugSrv *debugapi.Server
	if cfg.DebugHTTPEnabled {
		debugSrv = debugapi.NewServer(debugapi.Options{
			Addr:         cfg.DebugHTTPAddr,
			MQTT:         e,
			Store:        e.store,
			Version:      version,
			StartTime:    time.Now(),
			Log:          log.With().Str("component", "debugapi").Logger(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		})
		go func() {
			if err := debugSrv.Start(); err != nil {
				log.Error().Err(err).Msg("debug http server error")
			}
		}()
	}

	go e.runCommandLoop(ctx)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	if debugSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := debugSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("debug http server shutdown error")
		}
	}
	log.Info().Msg("mqtt-inspect stopped")
}

// defaultBudget is the per-topic retention budget in bytes for every topic
// that has no exact-match buffer-limit override in the settings file.
const defaultBudget = 4 << 20 // 4 MiB

// IsConnected implements debugapi.MQTTStatus over the engine's current
// connection, which may be replaced at runtime by a later :connect
// command — a snapshot of *mqttclient.Client taken at startup would go
// stale the moment that happens.
func (e *engine) IsConnected() bool {
	return e.mqtt != nil && e.mqtt.IsConnected()
}

// onSettingsReload is the settings.Watcher callback fired when the
// settings file changes out-of-process; it only logs, since the engine's
// live MQTT connection and buffer budgets are not renegotiated implicitly
// (a GUI would re-run :connect explicitly if it wants the new values).
func (e *engine) onSettingsReload(s settings.Settings) {
	e.log.Info().Str("hostname", s.Hostname).Msg("settings reloaded from disk")
}

func (e *engine) connect(s settings.Settings) error {
	if e.mqtt != nil {
		e.mqtt.Close()
	}
	opts := mqttclient.Options{
		Host:          s.Hostname,
		Port:          s.Port,
		ClientID:      s.ClientID,
		UseTLS:        s.UseTLS,
		KeepAlive:     time.Duration(s.KeepAlive) * time.Second,
		CleanSession:  s.CleanSession,
		SessionExpiry: s.SessionExpiry,
		Log:           e.log.With().Str("component", "mqtt").Logger(),
	}
	switch s.AuthMode {
	case command.AuthUserPass:
		opts.Username = s.Username
		opts.Password = s.Password
	case command.AuthEnhanced:
		opts.AuthMethod = s.AuthMethod
		opts.AuthData = []byte(s.AuthData)
	}
	client, err := mqttclient.Connect(e.ctx, opts)
	if err != nil {
		return err
	}
	e.mqtt = client
	e.wireIngest()
	if err := e.mqtt.Subscribe(e.ctx, "#"); err != nil {
		e.log.Warn().Err(err).Msg("failed to subscribe to #")
	}
	e.log.Info().Str("host", s.Hostname).Int("port", s.Port).Msg("mqtt connected")
	return nil
}

func (e *engine) wireIngest() {
	e.mqtt.SetMessageHandler(func(topic string, msg mqttmsg.Message) {
		e.coordinator.Ingest(topic, msg)
	})
}

func (e *engine) runCommandLoop(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("mqtt-inspect ready. Type a command (:help) or a search term.")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()
		snap := e.settings.Current().Snapshot()
		outcome := command.Parse(line, snap)
		e.handleOutcome(outcome)
	}
}

func (e *engine) handleOutcome(o command.Outcome) {
	switch o.Kind {
	case command.KindFailure:
		fmt.Println("error:", o.Reason)
	case command.KindSearchTerm:
		fmt.Printf("searching messages for %q\n", o.SearchTerm)
	case command.KindTopicSearch:
		e.tree.ApplyFilter(o.TopicQuery)
		matches := collectVisible(e.tree.Roots())
		ctx := navcursor.NewSearchContext(o.TopicQuery, matches)
		if cur, ok := ctx.Current(); ok {
			fmt.Printf("topic search %q: %d matches, first=%s\n", o.TopicQuery, len(matches), cur.FullPath)
		} else {
			fmt.Printf("topic search %q: no matches\n", o.TopicQuery)
		}
	case command.KindCommand:
		e.handleCommand(o.Command)
	}
}

func collectVisible(nodes []*topictree.Node) []navcursor.TopicReference {
	var out []navcursor.TopicReference
	for _, n := range nodes {
		if n.Visible {
			out = append(out, navcursor.TopicReference{FullPath: n.FullPath})
		}
		out = append(out, collectVisible(n.Children)...)
	}
	return out
}

func (e *engine) handleCommand(c command.Command) {
	switch c.Name {
	case command.CmdConnect:
		s := e.settings.Current()
		s.Hostname, s.Port, s.Username, s.Password = c.Host, c.Port, c.Username, c.Password
		if c.Username != "" {
			s.AuthMode = command.AuthUserPass
		}
		if err := e.connect(s); err != nil {
			fmt.Println("connect failed:", err)
			return
		}
		fmt.Println("connected")
	case command.CmdDisconnect:
		if e.mqtt != nil {
			e.mqtt.Close()
		}
		fmt.Println("disconnected")
	case command.CmdClear:
		e.store.ClearAll()
		fmt.Println("cleared")
	case command.CmdFilter:
		e.tree.ApplyFilter(c.Text)
		fmt.Println("filter applied:", c.Text)
	case command.CmdExpand:
		e.tree.ExpandAll()
	case command.CmdCollapse:
		e.tree.CollapseAll()
	case command.CmdExport:
		e.doExport(c)
	case command.CmdDeleteTopic:
		e.doDeleteTopic(c)
	case command.CmdHelp:
		fmt.Println("commands: connect, disconnect, export, filter, clear, help, pause, resume, copy, expand, collapse, settings, search, view, setuser, setpass, setauthmode, setauthmethod, setauthdata, setusetls, deletetopic")
	case command.CmdSettings:
		fmt.Printf("%+v\n", e.settings.Current())
	case command.CmdSetUser, command.CmdSetPass, command.CmdSetAuthMethod, command.CmdSetAuthData, command.CmdSetAuthMode, command.CmdSetUseTLS:
		e.mutateSettings(c)
	default:
		fmt.Println("ok:", c.Name)
	}
}

func (e *engine) doExport(c command.Command) {
	var entries []topicstore.BufferedEntry
	if c.All {
		for _, t := range e.store.Topics() {
			entries = append(entries, e.store.MessagesFor(t)...)
		}
	} else {
		fmt.Println("export requires a selected topic in a real GUI session; exporting all known topics instead")
		for _, t := range e.store.Topics() {
			entries = append(entries, e.store.MessagesFor(t)...)
		}
	}
	out, err := export.Write(export.Format(c.Format), entries)
	if err != nil {
		fmt.Println("export failed:", err)
		return
	}
	if err := os.WriteFile(c.Path, out, 0o644); err != nil {
		fmt.Println("export failed:", err)
		return
	}
	fmt.Printf("exported %d entries to %s\n", len(entries), c.Path)
}

// doDeleteTopic clears broker-side retained state for an exact topic or a
// wildcard pattern. Wildcards expand over topics this session has actually
// seen; the engine never enumerates broker-side retained topics.
func (e *engine) doDeleteTopic(c command.Command) {
	if e.mqtt == nil {
		fmt.Println("deletetopic requires an active connection")
		return
	}
	if !c.Confirmed {
		fmt.Println("deletetopic requires confirmation; re-run with a confirm flag")
		return
	}
	d := topicdelete.New(e.mqtt, e.store, e.log.With().Str("component", "topicdelete").Logger())
	res := d.Run(e.ctx, c.TopicPattern)
	fmt.Printf("deletetopic: %d cleared, %d failed, %d cancelled\n",
		len(res.Successful), len(res.Failed), len(res.Cancelled))
	for _, f := range res.Failed {
		fmt.Printf("  %s: %s (retryable=%t): %v\n", f.Topic, f.Class, f.Retryable, f.Err)
	}
}

func (e *engine) mutateSettings(c command.Command) {
	s := e.settings.Current()
	switch c.Name {
	case command.CmdSetUser:
		s.Username = c.Text
	case command.CmdSetPass:
		s.Password = c.Text
	case command.CmdSetAuthMethod:
		s.AuthMethod = c.Text
	case command.CmdSetAuthData:
		s.AuthData = c.Text
	case command.CmdSetAuthMode:
		s.AuthMode = c.Mode
	case command.CmdSetUseTLS:
		s.UseTLS = c.UseTLS
	}
	if err := settings.Save(e.cfg.SettingsPath, s); err != nil {
		fmt.Println("failed to save settings:", err)
		return
	}
	fmt.Println("settings updated")
}
