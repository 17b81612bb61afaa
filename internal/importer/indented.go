package importer

import (
	"bufio"
	"strings"

	"treedrag/internal/model"
)

// IndentedTextParser imports plain text files with indentation-based
// hierarchy: two spaces (or one tab) per level.
type IndentedTextParser struct{}

func (p *IndentedTextParser) Name() string {
	return "Indented Text"
}

// Parse converts indented text to flat records. A line indented deeper
// than its predecessor becomes that predecessor's child; anything deeper
// than one extra level is clamped to one.
func (p *IndentedTextParser) Parse(content string) ([]*model.Record, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))

	var records []*model.Record
	var stack levelStack
	prevLevel := -1

	for scanner.Scan() {
		line := scanner.Text()
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		level := indentLevel(line)
		if level > prevLevel+1 {
			level = prevLevel + 1
		}

		r := model.NewRecord(text)
		r.ParentID = stack.parentAt(level)
		records = append(records, r)
		stack.push(level, r)
		prevLevel = level
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// indentLevel counts leading whitespace: a tab counts as 2 spaces, and 2
// spaces make one level.
func indentLevel(line string) int {
	indent := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' {
			indent += 2
		} else if line[i] == ' ' {
			indent++
		} else {
			break
		}
	}
	return indent / 2
}
