package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface is the command surface the REPL needs. *App satisfies it.
type execIface interface {
	isSignedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	Renew(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	SignOut(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
}

// runREPL reads commands line by line and dispatches them to a. It returns
// on EOF or "exit"/"quit". Command errors are reported by the commands
// themselves. Commands read their prompts from the same reader.
//
//	Signed out: help, signup, signin, exit
//	Signed in:  help, whoami, renew, avatar <file>, signout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: whoami, renew, avatar <file>, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "renew":
			_ = a.Renew(ctx)

		case "whoami", "validate":
			_ = a.WhoAmI(ctx)

		case "avatar":
			path := ""
			if len(parts) > 1 {
				path = parts[1]
			}
			_ = a.Avatar(ctx, path)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
