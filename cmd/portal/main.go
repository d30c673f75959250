package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/csg33k/code-portal/internal/adapters/backend"
	"github.com/csg33k/code-portal/internal/adapters/browser"
	"github.com/csg33k/code-portal/internal/adapters/pdf"
	"github.com/csg33k/code-portal/internal/adapters/storage"
	"github.com/csg33k/code-portal/internal/adapters/terminal"
	"github.com/csg33k/code-portal/internal/config"
	"github.com/csg33k/code-portal/internal/handlers"
	"github.com/csg33k/code-portal/internal/portal"
	"github.com/csg33k/code-portal/internal/ports"
	"github.com/csg33k/code-portal/internal/templates"
	"github.com/csg33k/code-portal/internal/ui"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.Server, "server", cfg.Server, "backend base URL")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flag.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable coloured output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [command [args...]]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without a command an interactive shell is started; type help there.")
		flag.PrintDefaults()
	}
	flag.Parse()

	slog.SetDefault(cfg.NewLogger(os.Stderr))

	api, err := backend.New(cfg.Server, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("invalid server address: %v", err)
	}
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to set up download storage: %v", err)
	}

	surface := terminal.NewStdout(cfg.NoColor)
	ctrl := portal.New(api, surface, browser.New(os.Stdout), store, portal.Options{
		UI:             ui.Options{NoticeVisible: cfg.NoticeVisible, NoticeExit: cfg.NoticeExit},
		DownloadSettle: cfg.DownloadSettle,
		Exporters: map[string]ports.TableExporter{
			".html": templates.HTMLExporter{},
			".htm":  templates.HTMLExporter{},
			".pdf":  pdf.Exporter{FontPath: cfg.PDFFont},
		},
	})
	defer ctrl.Close()
	h := handlers.New(ctrl, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("code portal", "server", api.BaseURL(), "storage", cfg.Storage.Type)

	ctrl.Start(ctx, cfg.Username, cfg.Password)

	if args := flag.Args(); len(args) > 0 {
		if err := h.Dispatch(ctx, quoteArgs(args)); err != nil && !errors.Is(err, handlers.ErrQuit) {
			ctrl.Close()
			os.Exit(1)
		}
		return
	}
	if err := h.Run(ctx, os.Stdin); err != nil {
		log.Fatal(err)
	}
}

// quoteArgs rebuilds a command line from os.Args so arguments keep their
// boundaries when split again.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'"'"'`) + "'"
	}
	return strings.Join(quoted, " ")
}
