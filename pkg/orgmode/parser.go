// Package orgmode imports tasks from Org-mode outlines.
package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|STARTED|DOING|DONE)\s+(?:\[#[A-Z]\]\s*)?(.*?)(?:\s+(:[\w@:]+:))?\s*$`)
	planningRegex = regexp.MustCompile(`^(DEADLINE|SCHEDULED|CLOSED):`)
)

var keywordStatus = map[string]model.Status{
	"TODO":    model.PENDING,
	"STARTED": model.IN_PROGRESS,
	"DOING":   model.IN_PROGRESS,
	"DONE":    model.COMPLETED,
}

// ParseFile parses the Org-mode file at filePath.
func ParseFile(filePath string) ([]model.FormData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ParseFiles parses multiple Org-mode files in order.
func ParseFiles(filePaths []string) ([]model.FormData, error) {
	var all []model.FormData
	for _, filePath := range filePaths {
		tasks, err := ParseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// Parse reads headings carrying a TODO keyword. The plain text under a
// heading becomes the description; planning lines and drawers are skipped.
// Headings without a keyword end the previous task's body.
func Parse(r io.Reader) ([]model.FormData, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.FormData
	var current *model.FormData
	var body []string
	inDrawer := false

	flush := func() {
		if current != nil {
			current.Description = strings.TrimSpace(strings.Join(body, "\n"))
			tasks = append(tasks, *current)
		}
		current, body = nil, nil
	}

	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(raw, "*") {
			flush()
			inDrawer = false
			if matches := headingRegex.FindStringSubmatch(raw); matches != nil && matches[2] != "" {
				current = &model.FormData{
					Title:  strings.TrimSpace(matches[2]),
					Status: keywordStatus[matches[1]],
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case inDrawer:
			if line == ":END:" {
				inDrawer = false
			}
		case strings.HasPrefix(line, ":") && strings.HasSuffix(line, ":") && len(line) > 1:
			inDrawer = true
		case planningRegex.MatchString(line):
		case line == "" && len(body) == 0:
		default:
			body = append(body, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
