package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/zach2017/oldtownaltour/internal/logging"
	"github.com/zach2017/oldtownaltour/internal/services"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	service services.CatalogService
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires the dashboard to a catalog. in supplies both commands and
// answers to prompts.
func NewApp(svc services.CatalogService, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop{}
	}
	return &App{service: svc, log: log, reader: bufio.NewReader(in), out: out}
}

// Run prints the health banner and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	printlnFn("Old Alabama Town tour catalog (type 'help' for commands)")
	if err := a.Health(ctx); err != nil {
		a.log.Error(ctx, "catalog unavailable", "err", err)
		printlnFn("error:", err)
		return
	}
	runREPL(ctx, a, a.reader)
}

// progressInPlace reports whether upload progress can be redrawn on one line.
func (a *App) progressInPlace() bool {
	f, ok := a.out.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}
