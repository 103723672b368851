package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/recall/internal/semcache"
)

func TestHitLine_ShowsTwoDecimals(t *testing.T) {
	require.Equal(t, "Cache hit (confidence: 1.00)", HitLine(semcache.Result{Hit: true, Score: 0.99999}))
	require.Equal(t, "Cache hit (confidence: 0.81)", HitLine(semcache.Result{Hit: true, Score: 0.8123}))
}

func TestMissLine_NamesModel(t *testing.T) {
	require.Equal(t, "Cache miss, routed to openai/gpt-4", MissLine(semcache.Result{Model: "openai/gpt-4"}))
}

func TestValidators(t *testing.T) {
	require.NoError(t, validateFloat("0.85"))
	require.Error(t, validateFloat("high"))
	require.NoError(t, validateInt("10"))
	require.Error(t, validateInt("1.5"))
}
