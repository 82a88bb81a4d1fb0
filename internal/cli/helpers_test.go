package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("add milk\n"), cancel)

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "add ", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "Interrupted (%s)", "interrupt")
	assert.Equal(t, ">>> Interrupted (interrupt)\n", buf.String())
}
