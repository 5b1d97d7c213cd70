package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	Upload(ctx context.Context, args []string) error
	Single(ctx context.Context, args []string) error
	Enqueue(ctx context.Context, args []string) error
	Drain(ctx context.Context, args []string) error
	Pending(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  upload <owner> <file...>   upload a batch (drains pending uploads first)
  single <owner> <file>      upload one photo
  enqueue <owner> <file...>  queue photos for later
  drain <owner>              re-upload queued photos
  pending <owner>            list queued photos
  exit`

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Handler errors are printed and the loop continues. The
// prompt is only printed when prompt is true.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			fmt.Printf("photos %s> ", statusFn())
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
		case "upload":
			err = a.Upload(ctx, args)
		case "single":
			err = a.Single(ctx, args)
		case "enqueue":
			err = a.Enqueue(ctx, args)
		case "drain":
			err = a.Drain(ctx, args)
		case "pending":
			err = a.Pending(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describe(err))
		}
	}
}
