// Package importer parses external text formats into flat records. Imported
// records carry no order keys; the first tree build assigns them and they
// are persisted from there.
package importer

import (
	"fmt"
	"strings"

	"treedrag/internal/model"
)

// Format selects the parser for an imported file.
type Format string

const (
	FormatMarkdown     Format = "markdown"
	FormatIndentedText Format = "indented"
)

// Parser converts file content into flat parent-referencing records.
type Parser interface {
	Parse(content string) ([]*model.Record, error)
	Name() string
}

// ImportFile parses content in the given format.
func ImportFile(content string, format Format) ([]*model.Record, error) {
	var parser Parser

	switch format {
	case FormatMarkdown:
		parser = &MarkdownParser{}
	case FormatIndentedText:
		parser = &IndentedTextParser{}
	default:
		return nil, fmt.Errorf("unsupported import format: %s", format)
	}

	records, err := parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse error (%s): %w", parser.Name(), err)
	}
	return records, nil
}

// DetectFormat picks a format from the file extension. Unknown extensions
// default to indented text.
func DetectFormat(filename string) Format {
	if strings.HasSuffix(filename, ".md") {
		return FormatMarkdown
	}
	return FormatIndentedText
}

// levelStack tracks the record at each nesting level so a new line can
// reference its parent by id. Flat output needs no child links: pushing at
// a level truncates everything deeper.
type levelStack struct {
	records []*model.Record
}

func (s *levelStack) push(level int, r *model.Record) {
	if level > len(s.records) {
		level = len(s.records)
	}
	s.records = append(s.records[:level], r)
}

// parentAt returns the id of the record one level above, or nil at the
// root.
func (s *levelStack) parentAt(level int) *string {
	if level <= 0 || len(s.records) == 0 {
		return nil
	}
	if level > len(s.records) {
		level = len(s.records)
	}
	id := s.records[level-1].ID
	return &id
}
