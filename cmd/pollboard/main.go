package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/abrezinsky/pollboard/internal/app"
	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/browser"
	"github.com/abrezinsky/pollboard/internal/config"
	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

func showBanner() {
	logo := []string{
		` ____       _ _ ____                      _ `,
		`|  _ \ ___ | | | __ )  ___   __ _ _ __ __| |`,
		`| |_) / _ \| | |  _ \ / _ \ / _' | '__/ _' |`,
		`|  __/ (_) | | | |_) | (_) | (_| | | | (_| |`,
		`|_|   \___/|_|_|____/ \___/ \__,_|_|  \__,_|`,
	}
	border := strings.Repeat("═", 50)
	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s   %-47s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := logger.NextLevel(appLog.GetLevel())
	appLog.SetLevel(next)
	fmt.Printf("%sLog level: %s%s%s\r\n", green, yellow, strings.ToLower(next.String()), reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\r\n%s%s  Keyboard Shortcuts:%s\r\n", bold, green, reset)
	fmt.Printf("    %so%s      - Open the board in browser\r\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\r\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\r\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\r\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\r\n\r\n", cyan, reset)
}

func usage() {
	fmt.Fprintf(os.Stderr, `PollBoard - group polls with live results

Usage:
  pollboard [options]

Options:
%s
Every option can also be set as POLLBOARD_<NAME> in the environment,
in a .env file or in a config file passed with --config.

Keyboard Shortcuts (when enabled):
  o              Open the board in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  pollboard                                   # sqlite in ./pollboard.db on port 8081
  pollboard --store redis --redis_uri redis://localhost:6379/0
  pollboard --store mongo --mongo_uri mongodb://db:27017 --mongo_db polls
  pollboard --store host --host_url https://family.example/api --host_token $TOKEN
  pollboard --db_driver postgres --db "postgres://polls@localhost/polls?sslmode=disable"

`, config.Usage("pollboard"))
}

func main() {
	cfg, err := config.Load("pollboard", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s%v%s\n\n", red, err, reset)
		usage()
		os.Exit(2)
	}

	if cfg.Version {
		fmt.Printf("pollboard %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithOptions(logger.Options{
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      logger.ParseFormat(cfg.LogFormat),
		HTTPLogging: cfg.HTTPLog,
	})
	appLog.Debug("Effective configuration", "config", cfg.Dump())

	showBanner()

	password := cfg.AdminPW
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancelOpen := context.WithTimeout(ctx, 15*time.Second)
	store, err := app.OpenStore(openCtx, cfg, appLog)
	cancelOpen()
	if err != nil {
		appLog.Error("Failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}

	a, err := app.New(appLog, cfg, store, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		store.Close()
		appLog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	appLog.Info("Admin password", "password", password)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run()
	}()

	if cfg.Open {
		if err := browser.Open(a.BoardURL()); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !cfg.NoKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(a.BoardURL(), appLog, stop)
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Error("Server failed", "error", err)
			a.Shutdown(context.Background())
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	restoreTerminal()
	appLog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Shutdown failed", "error", err)
	}
}
