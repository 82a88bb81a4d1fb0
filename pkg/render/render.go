// Package render turns the application state into HTML through logic-less
// Handlebars templates.
//
// The same state always renders byte-identical markup.
package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/route"
	"github.com/aymerick/raymond"
)

//go:embed templates/*.hbs
var embedded embed.FS

// Template names.
const (
	TemplateTodos  = "todos.hbs"
	TemplateFooter = "footer.hbs"
	TemplatePage   = "page.hbs"
)

// Focus targets.
const (
	FocusNewTodo = "new-todo"
	FocusEdit    = "edit"
)

// DefaultTitle is the document title of the full page.
const DefaultTitle = "TodoMVC"

// View is the rendered form of a state.
type View struct {
	Filter           domain.Filter `json:"filter"`
	List             string        `json:"list"`
	MainVisible      bool          `json:"main_visible"`
	ToggleAllChecked bool          `json:"toggle_all_checked"`
	Footer           string        `json:"footer"`
	FooterVisible    bool          `json:"footer_visible"`
	Focus            string        `json:"focus"`
	Total            int           `json:"total"`
	Active           int           `json:"active"`
	Completed        int           `json:"completed"`
}

// Renderer holds the compiled templates.
type Renderer struct {
	todos  *raymond.Template
	footer *raymond.Template
	page   *raymond.Template
	title  string
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	dir   string
	title string
}

// WithTemplatesDir overrides embedded templates with files of the same name in dir.
// Missing files fall back to the embedded ones.
func WithTemplatesDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// WithTitle sets the document title of the full page.
func WithTitle(title string) Option {
	return func(c *config) {
		if title != "" {
			c.title = title
		}
	}
}

// New compiles the templates.
func New(opts ...Option) (*Renderer, error) {
	cfg := config{title: DefaultTitle}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{title: cfg.title}
	var err error
	if r.todos, err = compile(cfg.dir, TemplateTodos); err != nil {
		return nil, err
	}
	if r.footer, err = compile(cfg.dir, TemplateFooter); err != nil {
		return nil, err
	}
	if r.page, err = compile(cfg.dir, TemplatePage); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for package level defaults. It panics on error.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func compile(dir, name string) (*raymond.Template, error) {
	source, err := readTemplate(dir, name)
	if err != nil {
		return nil, err
	}
	tpl, err := raymond.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	tpl.RegisterHelper("eq", eqHelper)
	return tpl, nil
}

func readTemplate(dir, name string) ([]byte, error) {
	if dir != "" {
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return source, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}
	source, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return source, nil
}

// eqHelper renders the block when both arguments print the same.
func eqHelper(a, b interface{}, options *raymond.Options) interface{} {
	if raymond.Str(a) == raymond.Str(b) {
		return options.Fn()
	}
	return options.Inverse()
}

// Pluralize returns word for a count of exactly one and word+"s" otherwise.
func Pluralize(count int, word string) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Render produces the list markup and the visibility flags for state.
func (r *Renderer) Render(state *domain.State) (View, error) {
	filter := state.Filter.Normalize()
	visible := state.Todos.Filtered(filter)

	rows := make([]map[string]interface{}, 0, len(visible))
	for _, task := range visible {
		rows = append(rows, map[string]interface{}{
			"id":        task.ID,
			"title":     task.Title,
			"completed": task.Completed,
			"editing":   state.IsEditing(task.ID),
		})
	}

	list, err := r.todos.Exec(map[string]interface{}{
		"todos": rows,
		"href":  route.Href(filter),
	})
	if err != nil {
		return View{}, fmt.Errorf("render list: %w", err)
	}

	footer, footerVisible, err := r.RenderFooter(state)
	if err != nil {
		return View{}, err
	}

	total := len(state.Todos)
	active := len(state.Todos.Active())
	focus := FocusNewTodo
	if state.Editing != nil {
		focus = FocusEdit
	}

	return View{
		Filter:           filter,
		List:             list,
		MainVisible:      total > 0,
		ToggleAllChecked: active == 0,
		Footer:           footer,
		FooterVisible:    footerVisible,
		Focus:            focus,
		Total:            total,
		Active:           active,
		Completed:        total - active,
	}, nil
}

// RenderFooter renders the counter, filter links and clear control.
// The footer is visible iff the list is not empty.
func (r *Renderer) RenderFooter(state *domain.State) (string, bool, error) {
	total := len(state.Todos)
	active := len(state.Todos.Active())

	footer, err := r.footer.Exec(map[string]interface{}{
		"activeTodoCount": active,
		"activeTodoWord":  Pluralize(active, "item"),
		"completedTodos":  total - active,
		"filter":          state.Filter.Normalize().String(),
	})
	if err != nil {
		return "", false, fmt.Errorf("render footer: %w", err)
	}
	return footer, total > 0, nil
}

// Page wraps a view into a complete HTML document.
func (r *Renderer) Page(view View) (string, error) {
	page, err := r.page.Exec(map[string]interface{}{
		"title":            r.title,
		"filter":           view.Filter.Normalize().String(),
		"focus":            view.Focus,
		"list":             view.List,
		"mainVisible":      view.MainVisible,
		"toggleAllChecked": view.ToggleAllChecked,
		"footer":           view.Footer,
		"footerVisible":    view.FooterVisible,
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return page, nil
}
