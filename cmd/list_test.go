package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Output(t *testing.T) {
	root := t.TempDir()

	files := map[string]string{
		"go.mod":  "module example.com/listfixture\n\ngo 1.21\n",
		"calc.go": "package listfixture\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}

	cmd := newListCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--nocov", root})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "calc.go")
	assert.Contains(t, strings.ToUpper(out.String()), "TOTAL FILES 1")
}

func TestListCmd_NoSources(t *testing.T) {
	cmd := newListCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir()})

	assert.Error(t, cmd.Execute())
}
