package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it; tests
// use a stub.
type execIface interface {
	Status(ctx context.Context) error
	Save(ctx context.Context) error
	History(ctx context.Context) error
	Restore(ctx context.Context, id string) error
	SetOnline(ctx context.Context, online bool) error
}

const helpText = `Available commands:
  status         show save status and connectivity
  save           save now instead of waiting for the autosave interval
  history        list retained versions, newest first
  restore <id>   write a retained version back into the draft file
  online         mark the connection as available
  offline        mark the connection as lost
  exit | quit    leave the program`

// runREPL reads commands from scanner until EOF, "exit" or "quit". With
// prompt set, a status prompt is printed before each line.
//
// Command errors are printed and do not end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if prompt {
			printlnFn(fmt.Sprintf("dk %s> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "status", "s":
			err = a.Status(ctx)

		case "save":
			err = a.Save(ctx)

		case "history", "h":
			err = a.History(ctx)

		case "restore":
			if len(args) != 1 {
				printlnFn("Usage: restore <id>")
				continue
			}
			err = a.Restore(ctx, args[0])

		case "online":
			err = a.SetOnline(ctx, true)

		case "offline":
			err = a.SetOnline(ctx, false)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
