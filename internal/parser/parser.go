// Package parser turns files into indexable chunks. Each supported format is
// reduced to plain text with positional metadata (page, sheet or slide), then
// split into overlapping windows.
package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/ingest"
	"knowledge-rag/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// section is one positional unit of extracted text (a page, sheet, slide or
// whole file) before splitting.
type section struct {
	text     string
	position string // metadata key: "page", "sheet" or "slide"
	number   int
}

// ParseFile extracts text from a file and splits it into chunks. The file's
// name, extension and modification time become the chunk metadata.
func ParseFile(filePath string, cfg *config.Config) ([]models.Chunk, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	var sections []section
	var err error
	switch ext {
	case ".pdf":
		sections, err = parsePDF(filePath)
	case ".docx":
		sections, err = parseDOCX(filePath)
	case ".pptx":
		sections, err = parsePPTX(filePath)
	case ".xlsx":
		sections, err = parseXLSX(filePath)
	case ".ods":
		sections, err = parseODS(filePath)
	case ".md", ".markdown":
		sections, err = parseMarkdown(filePath)
	case ".txt":
		sections, err = parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	updatedAt := ""
	if stat, err := os.Stat(filePath); err == nil {
		updatedAt = stat.ModTime().Format(time.RFC3339)
	}

	var chunks []models.Chunk
	for _, sec := range sections {
		if strings.TrimSpace(sec.text) == "" {
			continue
		}
		meta := map[string]string{
			models.MetaName:      filepath.Base(filePath),
			models.MetaSummary:   "",
			models.MetaURL:       filePath,
			models.MetaCategory:  strings.TrimPrefix(ext, "."),
			models.MetaUpdatedAt: updatedAt,
		}
		if sec.position != "" {
			meta[sec.position] = strconv.Itoa(sec.number)
		}
		split, err := ingest.SplitText(sec.text, meta, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, split...)
	}
	return chunks, nil
}

func parsePDF(filePath string) ([]section, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var sections []section
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section{text: pageText, position: "page", number: i})
	}
	return sections, nil
}

func parseDOCX(filePath string) ([]section, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var text strings.Builder
	for _, paragraph := range strings.Split(content, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		text.WriteString(paragraph)
		text.WriteString("\n")
	}
	return []section{{text: text.String()}}, nil
}

func parsePPTX(filePath string) ([]section, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sections []section
	slide := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slide++
		sections = append(sections, section{
			text:     extractTextFromXML(string(data)),
			position: "slide",
			number:   slide,
		})
	}
	return sections, nil
}

func parseXLSX(filePath string) ([]section, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var sections []section
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		sections = append(sections, section{text: text.String(), position: "sheet", number: sheetNum + 1})
	}
	return sections, nil
}

func parseODS(filePath string) ([]section, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sections []section
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		sections = append(sections, section{text: text.String(), position: "sheet", number: sheetNum + 1})
	}
	return sections, nil
}

func parseText(filePath string) ([]section, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []section{{text: string(data)}}, nil
}

// extractTextFromXML pulls the text runs out of a slide's drawing XML.
func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if endIdx := strings.Index(part, "</a:t>"); endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}
