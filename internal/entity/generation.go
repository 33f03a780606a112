package entity

// GenerationRequest is what the pipeline hands to the generation
// capability: a system message plus the fully assembled user prompt.
type GenerationRequest struct {
	Mode   Mode
	System string
	Prompt string
}

// SimplifiedPage is one page of simplify-mode output.
type SimplifiedPage struct {
	PageNumber     int    `json:"page_number"`
	Title          string `json:"title"`
	SimplifiedText string `json:"simplified_text"`
	ImagePrompt    string `json:"image_prompt"`
}

// SimplifyResult is the wire payload for simplify mode.
type SimplifyResult struct {
	Success bool             `json:"success"`
	Pages   []SimplifiedPage `json:"pages"`
}

// AskResult is the wire payload for ask mode.
type AskResult struct {
	Success         bool   `json:"success"`
	Answer          string `json:"answer"`
	Confidence      string `json:"confidence"`
	RelevantExcerpt string `json:"relevant_excerpt"`
}

// KeyPoint is a single takeaway in extract mode.
type KeyPoint struct {
	Point      string `json:"point"`
	Importance string `json:"importance"`
}

// ExtractResult is the wire payload for extract mode.
type ExtractResult struct {
	Success      bool       `json:"success"`
	KeyPoints    []KeyPoint `json:"key_points"`
	OverallTheme string     `json:"overall_theme"`
	ActionItems  []string   `json:"action_items"`
}

// SummarizeResult is the wire payload for summarize mode.
type SummarizeResult struct {
	Success   bool     `json:"success"`
	Summary   string   `json:"summary"`
	WordCount int      `json:"word_count"`
	KeyTopics []string `json:"key_topics"`
}

// GenerationResponse is the mode-tagged result of a pipeline run.
// Exactly one of the variant pointers is set, matching Mode.
// Degraded marks best-effort fallback content produced locally after
// a generation or parsing failure; the caller still sees success.
type GenerationResponse struct {
	Mode     Mode
	Degraded bool

	Simplify  *SimplifyResult
	Ask       *AskResult
	Extract   *ExtractResult
	Summarize *SummarizeResult
}

// Payload returns the wire body for the active variant.
func (r *GenerationResponse) Payload() any {
	switch r.Mode {
	case ModeSimplify:
		return r.Simplify
	case ModeAsk:
		return r.Ask
	case ModeExtract:
		return r.Extract
	case ModeSummarize:
		return r.Summarize
	}
	return nil
}

// ResultFormat selects the export rendering of simplify output.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)
