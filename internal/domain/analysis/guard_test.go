package analysis

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_WellFormed(t *testing.T) {
	raw := []byte(`{
		"productName": "Choco Bites",
		"verdict": "concern",
		"confidence": 85,
		"healthScore": 40,
		"summary": "High in additives.",
		"quickAdvice": ["Limit intake", "Check alternatives"],
		"categories": [{
			"name": "Sweeteners",
			"icon": "🍬",
			"ingredients": [{
				"commonName": "Aspartame",
				"scientificName": "L-aspartyl-L-phenylalanine",
				"safety": "moderate",
				"explanation": "Artificial sweetener."
			}]
		}],
		"tradeoffs": [{
			"ingredient": "Aspartame",
			"why": "Zero calories",
			"concern": "Long-term studies debated",
			"reality": "Fine in moderation"
		}]
	}`)

	record := Normalize(raw)

	assert.Equal(t, "Choco Bites", record.ProductName)
	assert.Equal(t, VerdictConcern, record.Verdict)
	assert.Equal(t, 85, record.Confidence)
	assert.Equal(t, 40, record.HealthScore)
	assert.Equal(t, []string{"Limit intake", "Check alternatives"}, record.QuickAdvice)
	require.Len(t, record.Categories, 1)
	require.Len(t, record.Categories[0].Ingredients, 1)
	assert.Equal(t, SafetyModerate, record.Categories[0].Ingredients[0].Safety)
	require.Len(t, record.Tradeoffs, 1)
	assert.NotEmpty(t, record.ID)
}

func TestNormalize_DefaultsAndClamps(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, r *AnalysisRecord)
	}{
		{
			name: "unknown verdict falls back to caution",
			raw:  `{"verdict":"excellent"}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, VerdictCaution, r.Verdict)
			},
		},
		{
			name: "unknown safety falls back to unknown",
			raw:  `{"categories":[{"name":"x","ingredients":[{"commonName":"y","safety":"lethal"}]}]}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, SafetyUnknown, r.Categories[0].Ingredients[0].Safety)
			},
		},
		{
			name: "confidence clamped high",
			raw:  `{"confidence":250}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, 100, r.Confidence)
			},
		},
		{
			name: "confidence clamped low",
			raw:  `{"confidence":-5,"healthScore":-1}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, 0, r.Confidence)
				assert.Equal(t, 0, r.HealthScore)
			},
		},
		{
			name: "health score derived from confidence when absent",
			raw:  `{"confidence":80}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, 72, r.HealthScore)
			},
		},
		{
			name: "quick advice default",
			raw:  `{"verdict":"safe"}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.Equal(t, []string{"Check the full analysis for details"}, r.QuickAdvice)
			},
		},
		{
			name: "arrays default empty not nil",
			raw:  `{}`,
			check: func(t *testing.T, r *AnalysisRecord) {
				assert.NotNil(t, r.Categories)
				assert.NotNil(t, r.Tradeoffs)
				assert.Empty(t, r.Categories)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize([]byte(tt.raw)))
		})
	}
}

func TestNormalize_Truncation(t *testing.T) {
	long := strings.Repeat("a", 5000)
	raw, err := sonic.Marshal(map[string]interface{}{
		"productName": long,
		"summary":     long,
		"quickAdvice": []string{long},
	})
	require.NoError(t, err)

	record := Normalize(raw)
	assert.Len(t, record.ProductName, MaxProductNameLength)
	assert.Len(t, record.Summary, MaxSummaryLength)
	assert.Len(t, record.QuickAdvice[0], MaxAdviceLength)
}

func TestNormalize_AdviceCapped(t *testing.T) {
	advice := make([]string, 25)
	for i := range advice {
		advice[i] = "tip"
	}
	raw, err := sonic.Marshal(map[string]interface{}{"quickAdvice": advice})
	require.NoError(t, err)

	record := Normalize(raw)
	assert.Len(t, record.QuickAdvice, MaxAdviceEntries)
}

func TestNormalize_SalvagesWrongTypes(t *testing.T) {
	// Wrong-typed confidence fails the strict decode; the salvage pass must
	// still recover the usable fields.
	raw := []byte(`{
		"productName": "Soda",
		"verdict": "safe",
		"confidence": "very high",
		"quickAdvice": ["ok", 42, "fine"]
	}`)

	record := Normalize(raw)
	assert.Equal(t, "Soda", record.ProductName)
	assert.Equal(t, VerdictSafe, record.Verdict)
	assert.Equal(t, 0, record.Confidence)
	assert.Equal(t, []string{"ok", "fine"}, record.QuickAdvice)
}

func TestNormalize_NeverFails(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("not json"),
		[]byte(`[1,2,3]`),
		[]byte(`"just a string"`),
		[]byte(`{"categories":"nope","tradeoffs":12}`),
	}

	for _, raw := range inputs {
		record := Normalize(raw)
		require.NotNil(t, record)
		assert.Equal(t, VerdictCaution, record.Verdict)
		assert.NotEmpty(t, record.ID)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize([]byte(`{"verdict":"safe","confidence":90,"summary":"fine"}`))

	encoded, err := sonic.Marshal(first)
	require.NoError(t, err)
	second := Normalize(encoded)

	assert.Equal(t, first, second)
}
