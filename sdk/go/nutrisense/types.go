package nutrisense

// AnalyzeRequest submits an ingredient list for analysis. Set Type to
// "image" and ImageBase64 for label photos; otherwise fill Ingredients.
type AnalyzeRequest struct {
	Type        string `json:"type,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	UserQuery   string `json:"userQuery,omitempty"`
}

// ChatMessage is one prior turn of a follow-up conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks a follow-up question about a prior analysis.
type ChatRequest struct {
	Question            string        `json:"question"`
	AnalysisContext     any           `json:"analysisContext,omitempty"`
	ConversationHistory []ChatMessage `json:"conversationHistory,omitempty"`
}

// Analysis is the normalized safety assessment returned by the server.
type Analysis struct {
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

// IngredientCategory groups related ingredients.
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

type chatResponse struct {
	Response string `json:"response"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

type shareResponse struct {
	ShareCode string `json:"shareCode"`
}
