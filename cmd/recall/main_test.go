package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iishyfishyy/recall/internal/config"
	"github.com/iishyfishyy/recall/internal/embeddings"
	"github.com/iishyfishyy/recall/internal/history"
	"github.com/iishyfishyy/recall/internal/llm"
	"github.com/iishyfishyy/recall/internal/router"
	"github.com/iishyfishyy/recall/internal/semcache"
	"github.com/iishyfishyy/recall/internal/vectorstore"
)

func TestLoadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	body := "questions:\n  - What is the product delivery time?\n  - \"  \"\n  - Do you ship internationally?\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	questions, err := loadQuestions(path)
	require.NoError(t, err)
	require.Equal(t, []string{"What is the product delivery time?", "Do you ship internationally?"}, questions)
}

func TestLoadQuestions_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions: []\n"), 0644))

	_, err := loadQuestions(path)
	require.Error(t, err)
}

func TestDefaultQuestions_RepeatsHitTheCache(t *testing.T) {
	e, err := embeddings.NewHashEmbedder(embeddings.DefaultDimensions)
	require.NoError(t, err)
	orch := semcache.New(vectorstore.NewStore(e), router.New(router.DefaultConfig()), llm.NewSimulatedCaller(), nil)

	seen := map[string]bool{}
	for _, q := range defaultQuestions {
		res, err := orch.Ask(context.Background(), q)
		require.NoError(t, err)
		if seen[q] {
			require.True(t, res.Hit, q)
		}
		seen[q] = true
	}

	st := orch.Stats()
	require.Equal(t, len(defaultQuestions), st.Hits+st.Misses)
	require.Equal(t, 0, st.Failures)
	require.GreaterOrEqual(t, st.Hits, len(defaultQuestions)-len(seen))
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "")
	cmd.Flags().IntVar(&cutoff, "cutoff", 0, "")
	cmd.Flags().IntVar(&dimensions, "dimensions", 0, "")
	cmd.Flags().BoolVar(&persist, "persist", false, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--cutoff", "6"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(cmd, cfg))
	require.Equal(t, 6, cfg.Router.Cutoff)
	require.Equal(t, 0.8, cfg.Cache.Threshold)
	require.Equal(t, embeddings.DefaultDimensions, cfg.Embedding.Dimensions)
}

func TestApplyFlags_RejectsInvalid(t *testing.T) {
	for _, value := range []string{"1.5", "-2", "NaN"} {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().Float64Var(&threshold, "threshold", 0, "")
		require.NoError(t, cmd.Flags().Parse([]string{"--threshold", value}))

		require.Error(t, applyFlags(cmd, config.Default()), value)
	}
}

func TestRootCmd_ErrorsAreNotPrintedByCobra(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ask", "--threshold", "2", "hello"})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cache.threshold")
	require.Empty(t, out.String())
}

func TestRecordHistory_WritesOnceOnClose(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	a := &app{logger: zap.NewNop()}

	a.recordHistory("first", semcache.Result{Model: "cheap"}, nil)
	a.recordHistory("first", semcache.Result{Model: "cheap", Hit: true, Score: 1}, nil)

	path, err := history.GetHistoryPath()
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "history must not be written per question")

	a.Close()

	hist, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, hist.Entries, 2)
	require.True(t, hist.Entries[1].Hit)
}

func TestLineReader(t *testing.T) {
	next := lineReader(strings.NewReader("first\nsecond\n"))

	q, err := next()
	require.NoError(t, err)
	require.Equal(t, "first", q)
	q, err = next()
	require.NoError(t, err)
	require.Equal(t, "second", q)
	_, err = next()
	require.ErrorIs(t, err, io.EOF)
}

func TestFormatAge(t *testing.T) {
	require.Equal(t, "just now", formatAge(time.Now()))
	require.Equal(t, "5 minutes ago", formatAge(time.Now().Add(-5*time.Minute-time.Second)))
	require.Equal(t, "1 hour ago", formatAge(time.Now().Add(-time.Hour-time.Second)))
	require.Equal(t, "3 days ago", formatAge(time.Now().Add(-72*time.Hour-time.Second)))
}
