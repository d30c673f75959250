// Package handlers turns command lines into portal operations.
package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/csg33k/code-portal/internal/domain"
	"github.com/csg33k/code-portal/internal/portal"
)

// ErrQuit is returned by Dispatch for the quit command.
var ErrQuit = errors.New("quit")

const prompt = "portal> "

// Route is one shell command.
type Route struct {
	Usage   string
	Summary string
	MinArgs int
	Run     func(ctx context.Context, args []string) error
}

type Handler struct {
	ctrl   *portal.Controller
	out    io.Writer
	routes map[string]Route
}

func New(ctrl *portal.Controller, out io.Writer) *Handler {
	h := &Handler{ctrl: ctrl, out: out}
	h.routes = h.Routes()
	return h
}

// Routes is the command table.
func (h *Handler) Routes() map[string]Route {
	return map[string]Route{
		"file":     {"file [path]", "select the file to upload (no path clears it)", 0, h.selectFile},
		"project":  {"project <name...>", "set the project name", 1, h.setProject},
		"submit":   {"submit [path [project...]]", "upload the selected file", 0, h.submit},
		"list":     {"list", "reload the submissions table", 0, h.list},
		"view":     {"view <id>", "open a submission in the editor, read only", 1, h.view},
		"edit":     {"edit <id>", "open a submission in the editor for editing", 1, h.edit},
		"download": {"download <id>", "save a submission to the download store", 1, h.download},
		"export":   {"export <path>", "write the table to an .html or .pdf file", 1, h.export},
		"login":    {"login <user> <password>", "sign in", 2, h.login},
		"logout":   {"logout", "sign out", 0, h.logout},
		"help":     {"help", "show this list", 0, h.help},
		"quit":     {"quit", "leave the portal", 0, h.quit},
	}
}

// Dispatch runs one command line. Input errors are shown as notices and
// returned; ErrQuit asks the caller to stop.
func (h *Handler) Dispatch(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return h.reject(fmt.Sprintf("Could not parse %q: %v", line, err))
	}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	if name == "exit" {
		name = "quit"
	}
	r, ok := h.routes[name]
	if !ok {
		return h.reject(fmt.Sprintf("Unknown command %q, type help for a list", args[0]))
	}
	if len(args)-1 < r.MinArgs {
		return h.reject("Usage: " + r.Usage)
	}
	return r.Run(ctx, args[1:])
}

// Run reads commands from in until quit, end of input or ctx is done.
func (h *Handler) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		fmt.Fprint(h.out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(h.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(h.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := h.Dispatch(ctx, line); errors.Is(err, ErrQuit) {
				return nil
			}
		}
	}
}

func (h *Handler) reject(msg string) error {
	h.ctrl.Presenter().Notify(msg, domain.NoticeError)
	return errors.New(msg)
}

func (h *Handler) selectFile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return h.ctrl.SelectFile("")
	}
	return h.ctrl.SelectFile(args[0])
}

func (h *Handler) setProject(ctx context.Context, args []string) error {
	h.ctrl.SetProjectName(strings.Join(args, " "))
	return nil
}

func (h *Handler) submit(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := h.ctrl.SelectFile(args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		h.ctrl.SetProjectName(strings.Join(args[1:], " "))
	}
	return h.ctrl.Submit(ctx)
}

func (h *Handler) list(ctx context.Context, args []string) error {
	return h.ctrl.LoadSubmissions(ctx)
}

func (h *Handler) view(ctx context.Context, args []string) error {
	id, err := h.submissionID(args[0])
	if err != nil {
		return err
	}
	return h.ctrl.View(id)
}

func (h *Handler) edit(ctx context.Context, args []string) error {
	id, err := h.submissionID(args[0])
	if err != nil {
		return err
	}
	return h.ctrl.Edit(id)
}

func (h *Handler) download(ctx context.Context, args []string) error {
	id, err := h.submissionID(args[0])
	if err != nil {
		return err
	}
	return h.ctrl.Download(ctx, id)
}

func (h *Handler) export(ctx context.Context, args []string) error {
	return h.ctrl.Export(ctx, args[0])
}

func (h *Handler) login(ctx context.Context, args []string) error {
	return h.ctrl.Login(ctx, args[0], args[1])
}

func (h *Handler) logout(ctx context.Context, args []string) error {
	return h.ctrl.Logout(ctx)
}

func (h *Handler) help(ctx context.Context, args []string) error {
	names := make([]string, 0, len(h.routes))
	for name := range h.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	width := 0
	for _, name := range names {
		width = max(width, len(h.routes[name].Usage))
	}
	for _, name := range names {
		r := h.routes[name]
		fmt.Fprintf(h.out, "  %-*s  %s\n", width, r.Usage, r.Summary)
	}
	return nil
}

func (h *Handler) quit(ctx context.Context, args []string) error {
	return ErrQuit
}

func (h *Handler) submissionID(s string) (int64, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, h.reject(fmt.Sprintf("Invalid submission id %q", s))
	}
	return id, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}
