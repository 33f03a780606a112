// Package prompt assembles generation requests: mode-specific
// instruction templates that demand the engine's structured output
// shapes, plus audience directives for simplify mode.
package prompt

import (
	"fmt"

	"github.com/docbrief/nlp-engine/internal/entity"
)

// Context and document limits, in runes, matching the generation
// service's effective context budget per mode.
const (
	maxSimplifyContext = 2000
	maxAskContext      = 3000
	maxSummarizeInput  = 4000
	maxExtractInput    = 5000
)

var audienceDirectives = map[entity.AudienceLevel]string{
	entity.AudienceExecutive: "Use very concise, high-level business language. Focus on ROI, strategic impact, and bottom-line results. Keep jargon to a minimum.",
	entity.AudienceManager:   "Use clear, simple English (Grade 6 level). Focus on project progress, status, risks, deadlines, and actionable items.",
	entity.AudienceClient:    "Use professional but non-technical language. Focus on deliverables, timelines, and the value provided.",
	entity.AudienceIntern:    "Use the simplest possible language and be verbose. Define every term and explain every concept as if the reader has no technical background.",
}

type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// AudienceDirective returns the fixed instruction for an audience
// level. Unknown or empty levels fall back to the manager directive.
// The result is a pure function of the enum value.
func (b *Builder) AudienceDirective(a entity.AudienceLevel) string {
	if directive, ok := audienceDirectives[a]; ok {
		return directive
	}
	return audienceDirectives[entity.AudienceManager]
}

// System returns the system message for a mode.
func (b *Builder) System(mode entity.Mode) string {
	switch mode {
	case entity.ModeSimplify:
		return "You are a helpful assistant that simplifies technical documents. Always respond with valid JSON only."
	case entity.ModeAsk:
		return "You are a helpful document Q&A assistant. Always respond with valid JSON only."
	case entity.ModeSummarize:
		return "You are a summarization assistant. Always respond with valid JSON only."
	case entity.ModeExtract:
		return "You are a document analysis assistant. Always respond with valid JSON only."
	}
	return "Always respond with valid JSON only."
}

// Simplify builds the page-simplification prompt. context carries
// retrieved passages and may be empty.
func (b *Builder) Simplify(pageText string, pageNumber int, audience entity.AudienceLevel, context string) string {
	contextBlock := ""
	if context != "" {
		contextBlock = fmt.Sprintf("\n\nHere is additional relevant context retrieved from the document:\n---\n%s\n---\n", truncate(context, maxSimplifyContext))
	}

	return fmt.Sprintf(`You are an expert business communication assistant.

Task:
Convert the following technical project update into a simplified summary.

Audience: %s
%s
%s
Rules:
- Avoid technical jargon.
- Explain in a way that the target audience can understand.
- Keep structure aligned with original content.
- Provide a short heading for this section.
- Add a brief explanation of key impact.
- Suggest a relevant image idea for this section.
- Output format must be valid JSON:

{
  "page_number": %d,
  "title": "...",
  "simplified_text": "...",
  "image_prompt": "..."
}

Content to simplify:
---
%s
---

Respond ONLY with the JSON object, no other text.`, audience, b.AudienceDirective(audience), contextBlock, pageNumber, pageText)
}

// Ask builds the Q&A prompt. Retrieved context wins over the raw
// document excerpt when available.
func (b *Builder) Ask(context, documentText, question string) string {
	var contextBlock string
	if context != "" {
		contextBlock = fmt.Sprintf("\nHere is the relevant context from the uploaded document:\n---\n%s\n---\n", truncate(context, maxAskContext))
	} else if documentText != "" {
		contextBlock = fmt.Sprintf("\nHere is the document content:\n---\n%s\n---\n", truncate(documentText, maxAskContext))
	}

	return fmt.Sprintf(`You are an intelligent document assistant.

The user has uploaded a document and is asking a question about it.
%s
User's Question: %s

Instructions:
- Answer the question based ONLY on the document content provided above.
- If the answer is not in the document, say so clearly.
- Be concise but thorough.
- Use simple, clear language.

Respond with a JSON object:
{
  "answer": "your detailed answer here",
  "confidence": "high/medium/low",
  "relevant_excerpt": "brief quote from the document that supports your answer"
}

Respond ONLY with the JSON object.`, contextBlock, question)
}

// Summarize builds the single-paragraph summary prompt.
func (b *Builder) Summarize(text string) string {
	return fmt.Sprintf(`You are a summarization expert.

Summarize the following text into a clear, concise paragraph (3-5 sentences).
Focus on the most important points.

Text:
---
%s
---

Respond with a JSON object:
{
  "summary": "your concise summary paragraph here",
  "word_count": <number of words in the summary>,
  "key_topics": ["topic1", "topic2", "topic3"]
}

Respond ONLY with the JSON object.`, truncate(text, maxSummarizeInput))
}

// Extract builds the key-point extraction prompt.
func (b *Builder) Extract(text string) string {
	return fmt.Sprintf(`You are an expert analyst.

Extract the key points and takeaways from the following document.

Document:
---
%s
---

Respond with a JSON object:
{
  "key_points": [
    {"point": "First key point", "importance": "high/medium/low"},
    {"point": "Second key point", "importance": "high/medium/low"}
  ],
  "overall_theme": "One sentence describing the main theme",
  "action_items": ["action 1", "action 2"]
}

Extract 5-10 key points. Respond ONLY with the JSON object.`, truncate(text, maxExtractInput))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
