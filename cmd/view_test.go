package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/EvanKepner/mutatest/internal/model"
)

func savedReport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "20260101-120000.yaml")
	summary := m.ResultsSummary{
		Results: []m.TrialResult{
			{
				Mutant: m.MutantReport{
					SrcFile:  "pkg/calc.go",
					SrcIdx:   m.LocIndex{Kind: m.KindBinOp, Line: 4, Col: 9, Op: m.OpAdd},
					Mutation: m.OpSub,
				},
				ReturnCode: 0,
			},
		},
		NLocsMutated:    1,
		NLocsIdentified: 1,
		TotalRuntime:    time.Second,
		BaselineRuntime: 100 * time.Millisecond,
	}

	require.NoError(t, reportStore.SaveSummary(context.Background(), m.Path(path), summary))

	return path
}

func TestViewCmd_ExplicitReport(t *testing.T) {
	path := savedReport(t)

	cmd := newViewCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "SURVIVED")
	assert.Contains(t, strings.ToUpper(out.String()), "TOTAL TRIALS")
}

func TestViewCmd_MissingReport(t *testing.T) {
	cmd := newViewCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.yaml")})

	assert.Error(t, cmd.Execute())
}
