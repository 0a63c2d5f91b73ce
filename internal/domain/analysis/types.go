package analysis

// Verdict values for a whole product. Unrecognized model output falls back
// to VerdictCaution.
const (
	VerdictSafe    = "safe"
	VerdictCaution = "caution"
	VerdictConcern = "concern"
)

// Safety values for a single ingredient. Unrecognized model output falls
// back to SafetyUnknown.
const (
	SafetySafe     = "safe"
	SafetyModerate = "moderate"
	SafetyConcern  = "concern"
	SafetyUnknown  = "unknown"
)

// Field caps applied during normalization. Strings over a cap are truncated,
// never rejected.
const (
	MaxProductNameLength  = 300
	MaxSummaryLength      = 2000
	MaxAdviceEntries      = 10
	MaxAdviceLength       = 200
	MaxNameLength         = 200
	MaxExplanationLength  = 1000
	MaxDetailedInfoLength = 2000
	MaxTradeoffLength     = 1000
)

// AnalysisRecord is the normalized safety assessment returned to clients.
type AnalysisRecord struct {
	ID              string               `json:"id"`
	ProductName     string               `json:"productName,omitempty"`
	Verdict         string               `json:"verdict"`
	Confidence      int                  `json:"confidence"`
	HealthScore     int                  `json:"healthScore"`
	Summary         string               `json:"summary"`
	DetectedContext string               `json:"detectedContext,omitempty"`
	ContextNote     string               `json:"contextNote,omitempty"`
	QuickAdvice     []string             `json:"quickAdvice"`
	Categories      []IngredientCategory `json:"categories"`
	Tradeoffs       []Tradeoff           `json:"tradeoffs"`
}

// IngredientCategory groups related ingredients under a display heading.
type IngredientCategory struct {
	Name        string       `json:"name"`
	Icon        string       `json:"icon,omitempty"`
	AINote      string       `json:"aiNote,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Ingredient is one assessed ingredient.
type Ingredient struct {
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName,omitempty"`
	Safety         string `json:"safety"`
	Explanation    string `json:"explanation"`
	DetailedInfo   string `json:"detailedInfo,omitempty"`
}

// Tradeoff describes an ingredient whose risk depends on context.
type Tradeoff struct {
	Ingredient string `json:"ingredient"`
	Why        string `json:"why"`
	Concern    string `json:"concern"`
	Reality    string `json:"reality"`
}
