package vectorstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteJournal_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.db")
	j, err := OpenSQLiteJournal(path, "hash", 3)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	recs := []Record{
		{ID: "b", Question: "second?", Answer: "2", Model: "m1", Embedding: []float32{0.1, 0.2, 0.3}, CreatedAt: created},
		{ID: "a", Question: "first?", Answer: "1", Model: "m2", Embedding: []float32{0.4, 0.5, 0.6}, CreatedAt: created.Add(time.Second)},
	}
	for _, rec := range recs {
		require.NoError(t, j.Append(ctx, rec))
	}
	require.Equal(t, 2, j.Count())
	require.Equal(t, path, j.Path())

	loaded, err := j.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Order follows insertion, not id.
	require.Equal(t, "b", loaded[0].ID)
	require.Equal(t, "a", loaded[1].ID)
	require.Equal(t, recs[0].Embedding, loaded[0].Embedding)
	require.True(t, recs[1].CreatedAt.Equal(loaded[1].CreatedAt))
	require.Equal(t, "m2", loaded[1].Model)
}

func TestSQLiteJournal_RejectsDuplicateID(t *testing.T) {
	j, err := OpenSQLiteJournal(filepath.Join(t.TempDir(), "records.db"), "hash", 1)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	rec := Record{ID: "dup", Question: "q", Answer: "a", Model: "m", Embedding: []float32{1}, CreatedAt: time.Now()}
	require.NoError(t, j.Append(ctx, rec))
	require.Error(t, j.Append(ctx, rec))
	require.Equal(t, 1, j.Count())
}

func TestSQLiteJournal_RejectsWrongDimension(t *testing.T) {
	j, err := OpenSQLiteJournal(filepath.Join(t.TempDir(), "records.db"), "hash", 2)
	require.NoError(t, err)
	defer j.Close()

	err = j.Append(context.Background(), Record{ID: "x", Embedding: []float32{1, 2, 3}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestOpenSQLiteJournal_MetadataMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	j, err := OpenSQLiteJournal(path, "hash", 4)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	// Same identity reopens fine.
	j, err = OpenSQLiteJournal(path, "hash", 4)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = OpenSQLiteJournal(path, "hash", 8)
	require.ErrorIs(t, err, ErrJournalMismatch)

	_, err = OpenSQLiteJournal(path, "other", 4)
	require.ErrorIs(t, err, ErrJournalMismatch)
}

func TestStore_ReplaysFromSQLiteJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	s, e := newHashStore(t)

	j, err := OpenSQLiteJournal(path, e.Name(), e.Dimensions())
	require.NoError(t, err)
	s = NewStore(e, WithJournal(j))

	ctx := context.Background()
	_, err = s.Append(ctx, "How can I check my balance?", "Open the app.", "openai/gpt-3.5-turbo", time.Now())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = OpenSQLiteJournal(path, e.Name(), e.Dimensions())
	require.NoError(t, err)
	defer j.Close()

	restored := NewStore(e, WithJournal(j))
	n, err := restored.Replay(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	match, ok, err := restored.FindBestMatch(e.Vector("How can I check my balance?"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Open the app.", match.Record.Answer)
	require.InDelta(t, 1.0, match.Score, 1e-9)
}
