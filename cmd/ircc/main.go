// Command ircc is a minimal line-oriented IRC client.
//
// It connects to the configured server, prints server activity to stdout,
// and reads user input from stdin. Input starting with "/" is interpreted as
// a command (/join, /msg, /history, ...); anything else is sent to the
// current channel.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kmrenner/irc"
	"github.com/kmrenner/irc/ircws"
)

func main() {
	var configPath string
	cfg := defaultConfig()

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "IRC server address (host:port)")
	flag.StringVar(&cfg.WebsocketURL, "ws", cfg.WebsocketURL, "connect via websocket gateway url instead of TCP")
	flag.StringVar(&cfg.Nickname, "nick", cfg.Nickname, "nickname")
	flag.StringVar(&cfg.Channel, "channel", cfg.Channel, "channel to join after registering")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	logger := newLogger(cfg.LogLevel)

	fileCfg, path, err := loadConfig(logger, configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("loading config")
	}
	cfg = mergeFlags(fileCfg)
	logger = newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &irc.Client{
		Addr:     cfg.Addr,
		Nickname: cfg.Nickname,
		User:     cfg.User,
		Realname: cfg.Realname,
		Pass:     cfg.Pass,
		Logger:   logger,
		History:  irc.NewHistory(cfg.HistoryLimit),
	}
	if cfg.WebsocketURL != "" {
		client.DialFn = ircws.Dialer(cfg.WebsocketURL, nil)
	}

	go readInput(ctx, client)

	logger.Info().Str("addr", cfg.Addr).Msg("connecting")
	if err := client.ConnectAndRun(ctx, func(e irc.Event) {
		if e.Kind == irc.EventRegistered && cfg.Channel != "" {
			client.JoinChannel(cfg.Channel)
		}
		if line := renderEvent(e); line != "" {
			fmt.Println(line)
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("session ended")
	}
}

// mergeFlags re-applies command line flags over the file config, since flags
// were parsed before the file was read.
func mergeFlags(cfg Config) Config {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = f.Value.String()
		case "ws":
			cfg.WebsocketURL = f.Value.String()
		case "nick":
			cfg.Nickname = f.Value.String()
		case "channel":
			cfg.Channel = f.Value.String()
		case "log-level":
			cfg.LogLevel = f.Value.String()
		}
	})
	return cfg
}

// readInput feeds stdin lines to the client until EOF or shutdown.
func readInput(ctx context.Context, client *irc.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		out, err := client.Exec(scanner.Text())
		if err != nil {
			fmt.Println("!", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
	// stdin closed; treat it like /quit
	client.Disconnect("")
}

func newLogger(level string) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
