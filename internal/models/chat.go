package models

// ChatRequest is the inbound payload for POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the answer plus the source tag identifying which
// stage of the routing chain produced it. The tag is the audit trail:
// clients and tests assert on it verbatim.
type ChatResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// Source tags for the routing stages. Template and LLM tags carry a
// suffix (template name, model id) appended at response time.
const (
	SourceIntent           = "intent"
	SourceKnowledge        = "knowledge"
	SourceTemplatePrefix   = "template:"
	SourceLLMPrefix        = "llm:"
	SourceFallbackNoAPIKey = "fallback:no_api_key"
	SourceFallbackUnavail  = "fallback:unavailable"
)
