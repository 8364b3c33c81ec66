package types

const (
	TaskClassify   = "classify"
	TaskSynthesize = "synthesize"
)

// ClassifyRequest asks the generation service whether a change is meaningful.
// The response body is a ChangeClassification.
type ClassifyRequest struct {
	Task          string   `json:"task"`
	Diff          string   `json:"diff"`
	ContextPrefix string   `json:"contextPrefix"`
	Language      string   `json:"language"`
	Declarations  []string `json:"declarations,omitempty"`
}

// SynthesizeRequest asks for a comment on the added lines of one chunk.
type SynthesizeRequest struct {
	Task           string       `json:"task"`
	Diff           string       `json:"diff"`
	Context        string       `json:"context"`
	FullContent    string       `json:"fullContent"`
	Language       string       `json:"language"`
	Style          CommentStyle `json:"style"`
	StyleDirective string       `json:"styleDirective"`
	LineNumber     int          `json:"lineNumber"`
}

// SynthesizeResponse is the service answer. Skip means the code was judged
// self-explanatory.
type SynthesizeResponse struct {
	Skip       bool    `json:"skip"`
	Comment    string  `json:"comment"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}
