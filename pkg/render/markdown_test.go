package render_test

import (
	"testing"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/render"
	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	state := domain.NewState(domain.Todos{
		{ID: "0123456789abcdef", Title: "Buy *milk*"},
		{ID: "b", Title: "Walk dog", Completed: true},
	})

	out := render.Markdown(state)
	assert.Contains(t, out, "## todos (all)")
	assert.Contains(t, out, "1. [ ] Buy \\*milk\\* `01234567`")
	assert.Contains(t, out, "2. [x] Walk dog `b`")
	assert.Contains(t, out, "**1** item left, 1 completed")

	state.Filter = domain.FilterActive
	out = render.Markdown(state)
	assert.NotContains(t, out, "Walk dog")

	assert.Contains(t, render.Markdown(domain.NewState(nil)), "_Nothing to show._")
}
