package entity

// Mode selects which product behavior the pipeline runs.
type Mode string

const (
	ModeSimplify  Mode = "simplify"
	ModeAsk       Mode = "ask"
	ModeExtract   Mode = "extract"
	ModeSummarize Mode = "summarize"
)

// Valid reports whether the mode is one of the supported behaviors.
func (m Mode) Valid() bool {
	switch m {
	case ModeSimplify, ModeAsk, ModeExtract, ModeSummarize:
		return true
	}
	return false
}

// AudienceLevel controls vocabulary and detail of simplify-mode output.
type AudienceLevel string

const (
	AudienceExecutive AudienceLevel = "executive"
	AudienceManager   AudienceLevel = "manager"
	AudienceClient    AudienceLevel = "client"
	AudienceIntern    AudienceLevel = "intern"
)

// Valid reports whether the audience level is a known value.
func (a AudienceLevel) Valid() bool {
	switch a {
	case AudienceExecutive, AudienceManager, AudienceClient, AudienceIntern:
		return true
	}
	return false
}

// DefaultOwnerID is used when the caller does not identify itself.
const DefaultOwnerID = "default"

// Query is a single processing request handed to the pipeline.
// Question is required only for ask mode; Audience is meaningful
// only for simplify mode.
type Query struct {
	OwnerID  string
	Mode     Mode
	Text     string
	Question string
	Audience AudienceLevel
}
