// Program netchan-demo is a demo client and server for netchan typed
// channels. The server replies Ok to every message; the client reads lines
// from stdin and sends each one as a blank, integer, or string message.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/rs/zerolog"

	"github.com/mlage/netchan"
)

// Message is the demo request vocabulary: exactly one of the variants is set,
// selected by Kind.
type Message struct {
	Kind string `json:"kind"` // "blank", "int", or "string"
	Int  int    `json:"int,omitempty"`
	Text string `json:"text,omitempty"`
}

// Response is the demo reply vocabulary.
type Response struct {
	OK bool `json:"ok"`
}

var flags struct {
	Config string `flag:"config,Path to a TOML config file"`
	Addr   string `flag:"addr,Service address (overrides the config file)"`
	Debug  bool   `flag:"debug,Enable debug logging"`
}

func main() {
	root := &command.C{
		Name:     filepath.Base(os.Args[0]),
		Help:     "Demo client and server for netchan typed channels.",
		SetFlags: command.Flags(flax.MustBind, &flags),
		Commands: []*command.C{
			{
				Name: "serve",
				Help: "Run a demo server until interrupted.",
				Run:  runServe,
			},
			{
				Name: "send",
				Help: `Connect to a demo server and send stdin lines as messages.

An empty line sends a blank message, a line that parses as an integer sends an
integer message, and anything else sends a string message.`,
				Run: runSend,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flags.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func runServe(env *command.Env) error {
	cfg, err := loadConfig(flags.Config, flags.Addr)
	if err != nil {
		return err
	}
	log := newLogger()

	srv := netchan.NewServer(netchan.ServerConfig[Message, Response]{
		OnMessage: func(id uint32, msg Message) Response {
			switch msg.Kind {
			case "blank":
				log.Info().Uint32("client", id).Msg("received blank message")
			case "int":
				log.Info().Uint32("client", id).Int("value", msg.Int).Msg("received int message")
			case "string":
				log.Info().Uint32("client", id).Str("value", msg.Text).Msg("received string message")
			default:
				log.Warn().Uint32("client", id).Str("kind", msg.Kind).Msg("received unknown message kind")
				return Response{OK: false}
			}
			return Response{OK: true}
		},
		OnConnect: func(id uint32) {
			log.Info().Uint32("client", id).Msg("client connected")
		},
		OnDisconnect: func(id uint32) {
			log.Info().Uint32("client", id).Msg("client disconnected")
		},
		PollInterval: cfg.pollInterval(),
		QueueSize:    cfg.QueueSize,
	})

	log.Info().Str("addr", cfg.Addr).Msg("listening for clients")
	return srv.ListenAndServe(cfg.Addr)
}

func runSend(env *command.Env) error {
	cfg, err := loadConfig(flags.Config, flags.Addr)
	if err != nil {
		return err
	}
	log := newLogger()

	snd, rcv, err := netchan.Dial[Message, Response](cfg.Addr,
		netchan.WithPollInterval(cfg.pollInterval()),
		netchan.WithQueueSize(cfg.QueueSize),
	)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	defer snd.Close()
	log.Info().Str("addr", cfg.Addr).Msg("connected, waiting for input")

	in := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for in.Scan() {
		line := strings.TrimSpace(in.Text())

		var msg Message
		if line == "" {
			msg = Message{Kind: "blank"}
		} else if n, err := strconv.Atoi(line); err == nil {
			msg = Message{Kind: "int", Int: n}
		} else {
			msg = Message{Kind: "string", Text: line}
		}

		if err := snd.Send(msg).Wait(); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		rsp, err := rcv.Recv()
		if err != nil {
			return fmt.Errorf("receive response: %w", err)
		}
		log.Debug().Bool("ok", rsp.OK).Msg("server responded")
		if !rsp.OK {
			log.Warn().Msg("server rejected the message")
		}
		fmt.Print("> ")
	}
	return in.Err()
}
