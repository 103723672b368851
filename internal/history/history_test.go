package history

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/recall/internal/semcache"
	"github.com/iishyfishyy/recall/internal/vectorstore"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	h, err := Load(filepath.Join(t.TempDir(), HistoryFileName))
	require.NoError(t, err)
	require.Empty(t, h.Entries)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", HistoryFileName)

	h := &History{}
	h.AddEntry(NewEntry("q1", semcache.Result{Model: "cheap", Record: vectorstore.Record{ID: "r1"}}, nil))
	h.AddEntry(NewEntry("q1", semcache.Result{Model: "cheap", Hit: true, Score: 1, Record: vectorstore.Record{ID: "r1"}}, nil))
	h.AddEntry(NewEntry("q2", semcache.Result{}, errors.New("model call failed")))
	require.NoError(t, h.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 3)
	require.Equal(t, "r1", loaded.Entries[1].RecordID)
	require.True(t, loaded.Entries[1].Hit)
	require.Equal(t, "model call failed", loaded.Entries[2].Error)
	require.Empty(t, loaded.Entries[2].Model)

	hits, misses, failures := loaded.Summary()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)
	require.Equal(t, 1, failures)
}
