package importer

import (
	"bufio"
	"strings"

	"treedrag/internal/model"
)

// MarkdownParser imports markdown files: headers nest by level, list items
// nest by indentation under the current header, plain lines attach to the
// nearest open item.
type MarkdownParser struct{}

func (p *MarkdownParser) Name() string {
	return "Markdown"
}

// Parse converts markdown content to flat records.
func (p *MarkdownParser) Parse(content string) ([]*model.Record, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))

	var records []*model.Record
	var stack levelStack
	headerDepth := 0

	add := func(level int, text string) {
		r := model.NewRecord(text)
		r.ParentID = stack.parentAt(level)
		records = append(records, r)
		stack.push(level, r)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if level, text := parseHeader(line); level >= 0 {
			add(level, text)
			headerDepth = level + 1
			continue
		}

		if level, text := parseListItem(line); level >= 0 {
			add(headerDepth+level, text)
			continue
		}

		add(headerDepth, strings.TrimSpace(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseHeader extracts the 0-based level and text from a markdown header,
// or (-1, "") for a non-header line.
func parseHeader(line string) (level int, text string) {
	level = 0
	for i := 0; i < len(line) && line[i] == '#'; i++ {
		level++
	}
	if level == 0 || level > len(line) {
		return -1, ""
	}
	return level - 1, strings.TrimSpace(line[level:])
}

// parseListItem extracts the 0-based indentation level and text from an
// unordered list item, or (-1, "") for a non-list line.
func parseListItem(line string) (level int, text string) {
	indent := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			indent++
		} else if line[i] == '\t' {
			indent += 2
		} else {
			break
		}
	}

	trimmed := strings.TrimSpace(line)
	if len(trimmed) > 2 && (trimmed[0] == '-' || trimmed[0] == '*' || trimmed[0] == '+') && trimmed[1] == ' ' {
		return indent / 2, strings.TrimSpace(trimmed[2:])
	}
	return -1, ""
}
