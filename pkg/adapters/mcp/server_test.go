package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/internal/testutils"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testutils.NewApp(t), logging.NewNop())
}

func TestTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleAdd(ctx, req, titleArgs{Title: "Walk dog"})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 1, resp.Active)

	_, err = s.handleAdd(ctx, req, titleArgs{Title: "Buy milk"})
	require.NoError(t, err)

	resp, err = s.handleAdd(ctx, req, titleArgs{Title: "   "})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Len(t, resp.Todos, 2)

	resp, err = s.handleToggle(ctx, req, idArgs{ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Completed)

	resp, err = s.handleList(ctx, req, listArgs{Filter: "active"})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterActive, resp.Filter)
	require.Len(t, resp.Todos, 1)
	assert.Equal(t, "Buy milk", resp.Todos[0].Title)

	// Without a filter the current view is kept.
	resp, err = s.handleList(ctx, req, listArgs{})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterActive, resp.Filter)

	_, err = s.handleList(ctx, req, listArgs{Filter: "done"})
	assert.Error(t, err)

	resp, err = s.handleUpdate(ctx, req, updateArgs{ID: "t2", Title: "  Buy oat milk "})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", resp.Todos[0].Title)

	off := false
	resp, err = s.handleToggleAll(ctx, req, toggleAllArgs{Completed: &off})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Completed)

	resp, err = s.handleToggleAll(ctx, req, toggleAllArgs{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Completed)
	assert.Empty(t, resp.Todos, "active view hides completed tasks")

	resp, err = s.handleRemove(ctx, req, idArgs{ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Completed)

	resp, err = s.handleClearCompleted(ctx, req, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Active+resp.Completed)
}

func TestTools_UnknownID(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleToggle(ctx, mcp.CallToolRequest{}, idArgs{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = s.handleUpdate(ctx, mcp.CallToolRequest{}, updateArgs{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

// abortingEngine reports every rename as aborted.
type abortingEngine struct {
	*todomvc.App
}

func (e abortingEngine) Update(ctx context.Context, id, title string) (*ports.Snapshot, error) {
	snap, err := e.App.Current(ctx)
	if err != nil {
		return nil, err
	}
	snap.Outcome.Edit = domain.EditAborted
	return snap, nil
}

func TestUpdate_RequiresCommit(t *testing.T) {
	app := testutils.NewApp(t)
	ctx := context.Background()
	_, err := app.Add(ctx, "Walk dog")
	require.NoError(t, err)

	s := NewServer(abortingEngine{App: app}, logging.NewNop())
	_, err = s.handleUpdate(ctx, mcp.CallToolRequest{}, updateArgs{ID: "t1", Title: "Walk cat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not committed")
}

func TestInProcessClient(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "todomvc-test", Version: "0.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_todos", "add_todo", "toggle_todo", "update_todo",
		"remove_todo", "toggle_all", "clear_completed",
	}, names)

	call := mcp.CallToolRequest{}
	call.Params.Name = "add_todo"
	call.Params.Arguments = map[string]any{"title": "Walk dog"}
	result, err := c.CallTool(ctx, call)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	read := mcp.ReadResourceRequest{}
	read.Params.URI = ResourceURI
	res, err := c.ReadResource(ctx, read)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	text, ok := res.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Walk dog")
	assert.Equal(t, "text/markdown", text.MIMEType)
}
