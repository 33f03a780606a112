package briefing

import "github.com/docbrief/nlp-engine/internal/entity"

// ProcessRequest is the simplify-mode request body.
type ProcessRequest struct {
	Text          string `json:"text"`
	AudienceLevel string `json:"audience_level"`
	UserID        string `json:"user_id"`
}

// AskRequest is the Q&A request body.
type AskRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// SummarizeRequest is the summarize request body.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// ExtractRequest is the key-point extraction request body.
type ExtractRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

// ResetIndexRequest discards a user's stored index.
type ResetIndexRequest struct {
	UserID string `json:"user_id"`
}

// ExportRequest renders simplify output into a downloadable document.
type ExportRequest struct {
	Format string                  `json:"format"`
	Pages  []entity.SimplifiedPage `json:"pages"`
}

// ExtractFileResponse carries extracted plain text back to the caller.
type ExtractFileResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

func (r *ProcessRequest) toQuery() entity.Query {
	return entity.Query{
		OwnerID:  r.UserID,
		Mode:     entity.ModeSimplify,
		Text:     r.Text,
		Audience: entity.AudienceLevel(r.AudienceLevel),
	}
}

func (r *AskRequest) toQuery() entity.Query {
	return entity.Query{
		OwnerID:  r.UserID,
		Mode:     entity.ModeAsk,
		Text:     r.Text,
		Question: r.Question,
	}
}

func (r *SummarizeRequest) toQuery() entity.Query {
	return entity.Query{
		Mode: entity.ModeSummarize,
		Text: r.Text,
	}
}

func (r *ExtractRequest) toQuery() entity.Query {
	return entity.Query{
		OwnerID: r.UserID,
		Mode:    entity.ModeExtract,
		Text:    r.Text,
	}
}
