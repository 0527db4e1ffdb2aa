package textextract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("  Recife é uma cidade linda.\n")
	reader := bytes.NewReader(data)

	out, err := Extract(reader, int64(len(data)), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Recife é uma cidade linda.", out.Content)
	assert.Equal(t, "txt", out.Metadata["type"])
}

func TestExtractTypeAliases(t *testing.T) {
	data := []byte("hello")
	for _, ft := range []string{".txt", "txt", "text/plain"} {
		reader := bytes.NewReader(data)
		out, err := Extract(reader, int64(len(data)), ft)
		require.NoError(t, err, ft)
		assert.Equal(t, "hello", out.Content)
	}
}

func TestExtractUnsupported(t *testing.T) {
	data := []byte{0x00, 0x01}
	reader := bytes.NewReader(data)

	_, err := Extract(reader, int64(len(data)), ".exe")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
}
