package models

// Metadata keys required on every indexed chunk.
const (
	MetaName      = "name"
	MetaSummary   = "summary"
	MetaURL       = "url"
	MetaCategory  = "category"
	MetaUpdatedAt = "updated_at"
)

// Chunk is one retrievable span of source text. Chunks are never mutated
// after creation; the store owns them once indexed.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Name returns the source label for the chunk, used in the synthesis context.
func (c Chunk) Name() string {
	if n := c.Metadata[MetaName]; n != "" {
		return n
	}
	return "unknown"
}

// Answer is the result of one question-answering run.
type Answer struct {
	Query   string
	Source  string
	Content string
}
