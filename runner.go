package todomvc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/aretw0/todomvc/pkg/render"
)

// Runner is a line-oriented front end for an App.
// It reads one command per line and prints the list after each one.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

const runnerHelp = `Commands:
  add <title>          add a task
  toggle <n>           flip a task (n is the number shown, or an id prefix)
  edit <n> <title>     change a title (an empty title deletes)
  rm <n>               delete a task
  toggle-all [off]     complete (or reopen) every task
  clear                delete completed tasks
  all|active|completed switch the filter
  ls                   show the list
  exit                 leave`

// Run executes the command loop until EOF or "exit".
func (r *Runner) Run(ctx context.Context, app *App) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	snap, err := app.Start(ctx, "")
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- todos (type 'help') ---")
	}
	r.show(snap)

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		line := strings.TrimSpace(text)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" && errors.Is(err, io.EOF) {
			return nil
		}

		switch line {
		case "":
			continue
		case "exit", "quit":
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case "help", "?":
			fmt.Fprintln(r.Output, runnerHelp)
			continue
		}

		next, cmdErr := r.execute(ctx, app, snap, line)
		if cmdErr != nil {
			fmt.Fprintf(r.Output, "error: %v\n", cmdErr)
		} else {
			snap = next
			r.show(snap)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (r *Runner) execute(ctx context.Context, app *App, snap *ports.Snapshot, line string) (*ports.Snapshot, error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "add":
		return app.Add(ctx, rest)
	case "toggle":
		return app.Toggle(ctx, ResolveRef(snap.State, rest))
	case "rm", "destroy":
		return app.Remove(ctx, ResolveRef(snap.State, rest))
	case "edit":
		ref, title, _ := strings.Cut(rest, " ")
		return app.Update(ctx, ResolveRef(snap.State, ref), title)
	case "toggle-all":
		return app.ToggleAll(ctx, rest != "off")
	case "clear":
		return app.ClearCompleted(ctx)
	case "ls":
		return app.Current(ctx)
	case "all", "active", "completed":
		return app.Navigate(ctx, "/"+verb)
	default:
		return nil, fmt.Errorf("unknown command %q", verb)
	}
}

func (r *Runner) show(snap *ports.Snapshot) {
	output := render.Markdown(snap.State)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// ResolveRef turns what a user typed into a task ID: a 1-based position in
// the displayed list, a unique ID prefix, or the ID itself.
func ResolveRef(state *domain.State, ref string) string {
	ref = strings.TrimSpace(ref)
	visible := state.Todos.Filtered(state.Filter.Normalize())

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(visible) {
		return visible[n-1].ID
	}
	if _, ok := state.Todos.Find(ref); ok {
		return ref
	}

	match := ""
	for _, task := range state.Todos {
		if ref != "" && strings.HasPrefix(task.ID, ref) {
			if match != "" {
				return ref
			}
			match = task.ID
		}
	}
	if match != "" {
		return match
	}
	return ref
}
