// Package taskwarrior imports tasks from Taskwarrior's JSON export.
package taskwarrior

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

type Client struct {
	// Binary defaults to "task".
	Binary string
}

func NewClient() *Client {
	return &Client{Binary: "task"}
}

// GetTasks runs `task <filter> export` and parses its output.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	cmd := exec.Command(c.Binary, args...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return c.ParseTasks(bytes.NewReader(output))
}

// ParseTasks reads either a JSON array (the export format) or a stream of
// JSON objects, one per line (the hook format).
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var tasks []Task
		if err := decoder.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !strings.ContainsRune(" \t\r\n", rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// ToFormData maps a Taskwarrior task onto the board. Deleted and recurring
// template tasks are skipped (ok is false). Waiting tasks count as pending
// and a running timer means in progress. Annotations become description
// lines, preceded by the project when there is one.
func ToFormData(t Task) (model.FormData, bool) {
	var status model.Status
	switch t.Status {
	case PENDING, WAITING:
		status = model.PENDING
		if t.Started() {
			status = model.IN_PROGRESS
		}
	case COMPLETED:
		status = model.COMPLETED
	default:
		return model.FormData{}, false
	}

	var lines []string
	if t.Project != "" {
		lines = append(lines, "Project: "+t.Project)
	}
	for _, a := range t.Annotations {
		if a.Description != "" {
			lines = append(lines, a.Description)
		}
	}
	return model.FormData{
		Title:       strings.TrimSpace(t.Description),
		Description: strings.Join(lines, "\n"),
		Status:      status,
	}, true
}
