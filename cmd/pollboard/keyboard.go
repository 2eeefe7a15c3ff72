package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/abrezinsky/pollboard/internal/browser"
	"github.com/abrezinsky/pollboard/internal/logger"
)

var (
	termMu    sync.Mutex
	termState *term.State
)

// restoreTerminal undoes raw mode, if it was enabled
func restoreTerminal() {
	termMu.Lock()
	defer termMu.Unlock()
	if termState != nil {
		term.Restore(int(os.Stdin.Fd()), termState)
		termState = nil
	}
}

// listenForKeyboard reads single keys from stdin and performs actions.
// quit is called for q and Ctrl+C.
func listenForKeyboard(boardURL string, appLog *logger.SlogLogger, quit func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	termMu.Lock()
	termState = state
	termMu.Unlock()
	defer restoreTerminal()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		switch strings.ToLower(string(buf[0])) {
		case "o":
			fmt.Printf("%sOpening %s...%s\r\n", cyan, boardURL, reset)
			if err := browser.Open(boardURL); err != nil {
				fmt.Printf("%sError opening browser: %v%s\r\n", red, err, reset)
			}
		case "h":
			if appLog.IsHTTPLoggingEnabled() {
				appLog.DisableHTTPLogging()
				fmt.Printf("%sHTTP logging disabled%s\r\n", yellow, reset)
			} else {
				appLog.EnableHTTPLogging()
				fmt.Printf("%sHTTP logging enabled%s\r\n", green, reset)
			}
		case "l":
			cycleLogLevel(appLog)
		case "?":
			printKeyboardHelp()
		case "q", "\x03":
			fmt.Printf("%sShutting down server...%s\r\n", yellow, reset)
			restoreTerminal()
			quit()
			return
		}
	}
}
