package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrisense-server-go/internal/domain/analysis"
	"nutrisense-server-go/internal/platform/config"
	"nutrisense-server-go/internal/platform/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "error", Dir: t.TempDir(), Filename: "test.log"})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	store, err := Open(config.StorageConfig{Enabled: true, Dir: t.TempDir()}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord() *analysis.AnalysisRecord {
	return &analysis.AnalysisRecord{
		ID:          "rec-1",
		ProductName: "Choco Bites",
		Verdict:     analysis.VerdictCaution,
		Confidence:  80,
		HealthScore: 55,
		Summary:     "Mostly fine, watch the sweeteners.",
		QuickAdvice: []string{"Limit intake"},
		Categories: []analysis.IngredientCategory{{
			Name: "Sweeteners",
			Ingredients: []analysis.Ingredient{{
				CommonName:  "Aspartame",
				Safety:      analysis.SafetyModerate,
				Explanation: "Artificial sweetener.",
			}},
		}},
		Tradeoffs: []analysis.Tradeoff{{
			Ingredient: "Aspartame",
			Why:        "Zero calories",
			Concern:    "Debated",
			Reality:    "Fine in moderation",
		}},
	}
}

func TestSaveAndGetShared(t *testing.T) {
	store := newTestStore(t)

	code, err := store.SaveShared(sampleRecord())
	require.NoError(t, err)
	assert.Len(t, code, shareCodeLength)

	got, err := store.GetShared(code)
	require.NoError(t, err)

	assert.Equal(t, code, got.ID)
	assert.Equal(t, "Choco Bites", got.ProductName)
	assert.Equal(t, analysis.VerdictCaution, got.Verdict)
	assert.Equal(t, "Mostly fine, watch the sweeteners.", got.Summary)
	assert.Equal(t, []string{"Limit intake"}, got.QuickAdvice)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Aspartame", got.Categories[0].Ingredients[0].CommonName)
	require.Len(t, got.Tradeoffs, 1)
}

func TestGetShared_UnknownCode(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetShared("nope123456")
	assert.ErrorIs(t, err, ErrSharedNotFound)
}

func TestSaveShared_DistinctCodes(t *testing.T) {
	store := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		code, err := store.SaveShared(sampleRecord())
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate share code %s", code)
		seen[code] = true
	}
}
