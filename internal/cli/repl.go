package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Attach(ctx context.Context, id, path string) error
	Detach(ctx context.Context, id, fileID string) error
	Search(ctx context.Context, query string) error
	Stats(ctx context.Context) error
	Export(ctx context.Context, format, path string) error
	Import(ctx context.Context, path string) error
	Health(ctx context.Context) error
}

const helpText = `Available commands:
  (l)ist                       list all locations
  show <id>                    show a location and its media
  add                          create a location
  edit <id>                    change beacon id, name or description
  delete <id>                  delete a location and its media
  attach <id> <path>           upload a file to a location
  detach <id> <fileId>         remove a file from a location
  search <text>                filter by beacon id, name or description
  stats                        catalog totals
  export json|csv|yaml <path>  write the catalog to a file
  import <path>                create locations from a JSON or YAML file
  health                       storage status
  exit | quit                  leave the program`

// usage maps commands that take arguments to their argument count and hint.
var usage = map[string]struct {
	n    int
	hint string
}{
	"show":   {1, "show <id>"},
	"edit":   {1, "edit <id>"},
	"delete": {1, "delete <id>"},
	"attach": {2, "attach <id> <path>"},
	"detach": {2, "detach <id> <fileId>"},
	"export": {2, "export json|csv|yaml <path>"},
	"import": {1, "import <path>"},
}

// runREPL reads commands line by line from r and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit". Command
// errors are printed and the loop continues. The reader is shared with
// commands that prompt for more input.
func runREPL(ctx context.Context, a execIface, r *bufio.Reader) {
	for {
		printlnFn("oat> ")
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if u, ok := usage[cmd]; ok && len(args) < u.n {
			printlnFn("Usage:", u.hint)
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "show":
			cmdErr = a.Show(ctx, args[0])

		case "add":
			cmdErr = a.Add(ctx)

		case "edit":
			cmdErr = a.Edit(ctx, args[0])

		case "delete":
			cmdErr = a.Delete(ctx, args[0])

		case "attach":
			// paths may contain spaces
			cmdErr = a.Attach(ctx, args[0], strings.Join(args[1:], " "))

		case "detach":
			cmdErr = a.Detach(ctx, args[0], args[1])

		case "search":
			cmdErr = a.Search(ctx, strings.Join(args, " "))

		case "stats":
			cmdErr = a.Stats(ctx)

		case "export":
			cmdErr = a.Export(ctx, args[0], strings.Join(args[1:], " "))

		case "import":
			cmdErr = a.Import(ctx, strings.Join(args, " "))

		case "health":
			cmdErr = a.Health(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", describeError(cmdErr))
		}
	}
}
