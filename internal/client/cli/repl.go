package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Inbox(ctx context.Context) error
	Sent(ctx context.Context) error
	Archive(ctx context.Context) error
	Memos(ctx context.Context) error
	Read(ctx context.Context, id string) error
	Ack(ctx context.Context, id string) error
	Compose(ctx context.Context) error
	Notifications(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	Stats(ctx context.Context) error
	Passwd(ctx context.Context) error
	Audit(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the intramail client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("intramail> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: inbox, sent, archive, memos, read <id>, ack <id>, send, notify, users, adduser, stats, passwd, audit, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "i", "inbox":
			_ = a.Inbox(ctx)

		case "sent":
			_ = a.Sent(ctx)

		case "archive":
			_ = a.Archive(ctx)

		case "m", "memos":
			_ = a.Memos(ctx)

		case "read":
			if len(args) == 0 {
				printlnFn("Usage: read <message id>")
				continue
			}
			_ = a.Read(ctx, args[0])

		case "ack":
			if len(args) == 0 {
				printlnFn("Usage: ack <memo id>")
				continue
			}
			_ = a.Ack(ctx, args[0])

		case "send", "compose":
			_ = a.Compose(ctx)

		case "n", "notify":
			_ = a.Notifications(ctx)

		case "users":
			_ = a.Users(ctx)

		case "adduser":
			_ = a.AddUser(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "passwd":
			_ = a.Passwd(ctx)

		case "audit":
			_ = a.Audit(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
