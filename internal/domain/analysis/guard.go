package analysis

import (
	"math"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// looseRecord mirrors AnalysisRecord with pointer fields so a strict decode
// distinguishes missing from zero and rejects wrong-typed values.
type looseRecord struct {
	ID              *string         `json:"id"`
	ProductName     *string         `json:"productName"`
	Verdict         *string         `json:"verdict"`
	Confidence      *float64        `json:"confidence"`
	HealthScore     *float64        `json:"healthScore"`
	Summary         *string         `json:"summary"`
	DetectedContext *string         `json:"detectedContext"`
	ContextNote     *string         `json:"contextNote"`
	QuickAdvice     []string        `json:"quickAdvice"`
	Categories      []looseCategory `json:"categories"`
	Tradeoffs       []looseTradeoff `json:"tradeoffs"`
}

type looseCategory struct {
	Name        *string           `json:"name"`
	Icon        *string           `json:"icon"`
	AINote      *string           `json:"aiNote"`
	Ingredients []looseIngredient `json:"ingredients"`
}

type looseIngredient struct {
	CommonName     *string `json:"commonName"`
	ScientificName *string `json:"scientificName"`
	Safety         *string `json:"safety"`
	Explanation    *string `json:"explanation"`
	DetailedInfo   *string `json:"detailedInfo"`
}

type looseTradeoff struct {
	Ingredient *string `json:"ingredient"`
	Why        *string `json:"why"`
	Concern    *string `json:"concern"`
	Reality    *string `json:"reality"`
}

// Normalize turns untrusted model output into a well-formed AnalysisRecord.
// It never fails: a strict decode is attempted first, and on any decode error
// a field-by-field salvage pass extracts whatever recognizable values exist.
// Missing, wrong-typed, or out-of-bounds fields get defaults rather than
// failing the request. An id is assigned when the input carries none.
func Normalize(raw []byte) *AnalysisRecord {
	var loose looseRecord
	if err := sonic.Unmarshal(raw, &loose); err != nil {
		loose = salvage(raw)
	}
	return build(loose)
}

// salvage decodes into a generic map and pulls out recognizable values one
// field at a time. Nothing here may fail.
func salvage(raw []byte) looseRecord {
	var m map[string]interface{}
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return looseRecord{}
	}

	loose := looseRecord{
		ID:              strField(m, "id"),
		ProductName:     strField(m, "productName"),
		Verdict:         strField(m, "verdict"),
		Confidence:      numField(m, "confidence"),
		HealthScore:     numField(m, "healthScore"),
		Summary:         strField(m, "summary"),
		DetectedContext: strField(m, "detectedContext"),
		ContextNote:     strField(m, "contextNote"),
		QuickAdvice:     strSliceField(m, "quickAdvice"),
	}

	for _, raw := range sliceField(m, "categories") {
		cm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		category := looseCategory{
			Name:   strField(cm, "name"),
			Icon:   strField(cm, "icon"),
			AINote: strField(cm, "aiNote"),
		}
		for _, rawIng := range sliceField(cm, "ingredients") {
			im, ok := rawIng.(map[string]interface{})
			if !ok {
				continue
			}
			category.Ingredients = append(category.Ingredients, looseIngredient{
				CommonName:     strField(im, "commonName"),
				ScientificName: strField(im, "scientificName"),
				Safety:         strField(im, "safety"),
				Explanation:    strField(im, "explanation"),
				DetailedInfo:   strField(im, "detailedInfo"),
			})
		}
		loose.Categories = append(loose.Categories, category)
	}

	for _, raw := range sliceField(m, "tradeoffs") {
		tm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		loose.Tradeoffs = append(loose.Tradeoffs, looseTradeoff{
			Ingredient: strField(tm, "ingredient"),
			Why:        strField(tm, "why"),
			Concern:    strField(tm, "concern"),
			Reality:    strField(tm, "reality"),
		})
	}

	return loose
}

func build(loose looseRecord) *AnalysisRecord {
	record := &AnalysisRecord{
		ID:              str(loose.ID),
		ProductName:     truncate(str(loose.ProductName), MaxProductNameLength),
		Verdict:         normalizeVerdict(str(loose.Verdict)),
		Confidence:      clampScore(loose.Confidence, 0),
		Summary:         truncate(str(loose.Summary), MaxSummaryLength),
		DetectedContext: str(loose.DetectedContext),
		ContextNote:     str(loose.ContextNote),
		QuickAdvice:     []string{},
		Categories:      []IngredientCategory{},
		Tradeoffs:       []Tradeoff{},
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if loose.HealthScore != nil {
		record.HealthScore = clampScore(loose.HealthScore, 0)
	} else {
		record.HealthScore = int(math.Round(float64(record.Confidence) * 0.9))
	}

	for _, advice := range loose.QuickAdvice {
		if advice == "" {
			continue
		}
		record.QuickAdvice = append(record.QuickAdvice, truncate(advice, MaxAdviceLength))
		if len(record.QuickAdvice) == MaxAdviceEntries {
			break
		}
	}
	if len(record.QuickAdvice) == 0 {
		record.QuickAdvice = []string{"Check the full analysis for details"}
	}

	for _, category := range loose.Categories {
		built := IngredientCategory{
			Name:        truncate(str(category.Name), MaxNameLength),
			Icon:        str(category.Icon),
			AINote:      truncate(str(category.AINote), MaxExplanationLength),
			Ingredients: []Ingredient{},
		}
		for _, ingredient := range category.Ingredients {
			built.Ingredients = append(built.Ingredients, Ingredient{
				CommonName:     truncate(str(ingredient.CommonName), MaxNameLength),
				ScientificName: truncate(str(ingredient.ScientificName), MaxNameLength),
				Safety:         normalizeSafety(str(ingredient.Safety)),
				Explanation:    truncate(str(ingredient.Explanation), MaxExplanationLength),
				DetailedInfo:   truncate(str(ingredient.DetailedInfo), MaxDetailedInfoLength),
			})
		}
		record.Categories = append(record.Categories, built)
	}

	for _, tradeoff := range loose.Tradeoffs {
		record.Tradeoffs = append(record.Tradeoffs, Tradeoff{
			Ingredient: truncate(str(tradeoff.Ingredient), MaxNameLength),
			Why:        truncate(str(tradeoff.Why), MaxTradeoffLength),
			Concern:    truncate(str(tradeoff.Concern), MaxTradeoffLength),
			Reality:    truncate(str(tradeoff.Reality), MaxTradeoffLength),
		})
	}

	return record
}

func normalizeVerdict(v string) string {
	switch v {
	case VerdictSafe, VerdictCaution, VerdictConcern:
		return v
	default:
		return VerdictCaution
	}
}

func normalizeSafety(s string) string {
	switch s {
	case SafetySafe, SafetyModerate, SafetyConcern, SafetyUnknown:
		return s
	default:
		return SafetyUnknown
	}
}

func clampScore(v *float64, def int) int {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	score := int(math.Round(*v))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strField(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

func numField(m map[string]interface{}, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}

func sliceField(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key].([]interface{}); ok {
		return v
	}
	return nil
}

func strSliceField(m map[string]interface{}, key string) []string {
	var out []string
	for _, v := range sliceField(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
