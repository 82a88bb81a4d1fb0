package render

import (
	"fmt"
	"strings"

	"github.com/aretw0/todomvc/pkg/domain"
)

// Markdown renders the filtered list as a markdown task list, numbered in
// display order, followed by the footer counters. Terminal surfaces use it.
func Markdown(state *domain.State) string {
	filter := state.Filter.Normalize()
	visible := state.Todos.Filtered(filter)

	var b strings.Builder
	fmt.Fprintf(&b, "## todos (%s)\n\n", filter)
	if len(visible) == 0 {
		b.WriteString("_Nothing to show._\n")
	}
	for i, task := range visible {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s `%s`\n", i+1, mark, escapeMarkdown(task.Title), shortID(task.ID))
	}

	active := len(state.Todos.Active())
	completed := len(state.Todos) - active
	fmt.Fprintf(&b, "\n**%d** %s left", active, Pluralize(active, "item"))
	if completed > 0 {
		fmt.Fprintf(&b, ", %d completed", completed)
	}
	b.WriteString("\n")
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`, "<", `\<`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
