// Package ingest loads document records, validates them and splits their
// content into overlapping chunks ready for indexing.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"knowledge-rag/internal/helper"
	"knowledge-rag/internal/models"

	"github.com/tmc/langchaingo/textsplitter"
)

// Record is one raw document as found in the source dataset.
type Record struct {
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	UpdatedAt string `json:"updated_at"`
	Content   string `json:"content"`
}

// Failure reports one record that could not be ingested. Like indexing
// failures, these are per item and never abort the batch.
type Failure struct {
	Name  string
	Index int
	Err   error
}

// Key returns a non-empty identifier for the failed record. Records rejected
// for a missing name fall back to their position in the dataset, so distinct
// failures never collapse onto one ledger entry.
func (f Failure) Key() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("record-%d", f.Index)
}

// LoadRecords reads a JSON array of records from path.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %v", err)
	}
	return records, nil
}

// Chunks validates each record and splits its content into overlapping
// windows. Invalid records are reported per item; valid records keep being
// processed. The record's other fields are copied into each chunk's metadata
// as strings.
func Chunks(records []Record, chunkSize, chunkOverlap int) ([]models.Chunk, []Failure) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []models.Chunk
	var failures []Failure
	for i, record := range records {
		if err := validate(record); err != nil {
			failures = append(failures, Failure{
				Name:  record.Name,
				Index: i,
				Err:   fmt.Errorf("%w: record %d: %v", models.ErrIndexing, i, err),
			})
			continue
		}

		pieces, err := splitter.SplitText(record.Content)
		if err != nil {
			failures = append(failures, Failure{
				Name:  record.Name,
				Index: i,
				Err:   fmt.Errorf("%w: record %d: %v", models.ErrIndexing, i, err),
			})
			continue
		}

		for _, piece := range pieces {
			id, err := helper.GenerateUUID()
			if err != nil {
				failures = append(failures, Failure{Name: record.Name, Index: i, Err: err})
				continue
			}
			chunks = append(chunks, models.Chunk{
				ID:      id,
				Content: piece,
				Metadata: map[string]string{
					models.MetaName:      record.Name,
					models.MetaSummary:   record.Summary,
					models.MetaURL:       record.URL,
					models.MetaCategory:  record.Category,
					models.MetaUpdatedAt: record.UpdatedAt,
				},
			})
		}
	}
	return chunks, failures
}

// SplitText splits free text into chunks carrying the given metadata. Used
// by the file parsers, which produce text without the dataset record shape.
func SplitText(content string, metadata map[string]string, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	pieces, err := splitter.SplitText(content)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		meta := make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		chunks = append(chunks, models.Chunk{ID: id, Content: piece, Metadata: meta})
	}
	return chunks, nil
}

// validate fails fast on records missing required keys rather than indexing
// a silently defaulted document.
func validate(record Record) error {
	if record.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if record.Content == "" {
		return fmt.Errorf("missing required field: content")
	}
	return nil
}
