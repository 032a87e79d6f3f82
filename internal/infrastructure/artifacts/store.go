// Package artifacts writes run outputs to disk. File names carry a timestamp
// so concurrent writers never collide and nothing is overwritten.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ContentCurator/internal/ports"
)

const timestampLayout = "20060102_150405"

// Dirs are the three output roots.
type Dirs struct {
	Output  string
	Content string
	Logs    string
}

// Store implements ports.ArtifactStore on the local filesystem.
type Store struct {
	dirs Dirs
	now  func() time.Time
}

var _ ports.ArtifactStore = (*Store)(nil)

// NewStore returns a store rooted at dirs. Directories are created lazily.
func NewStore(dirs Dirs) *Store {
	if dirs.Output == "" {
		dirs.Output = "output"
	}
	if dirs.Content == "" {
		dirs.Content = filepath.Join(dirs.Output, "content")
	}
	if dirs.Logs == "" {
		dirs.Logs = filepath.Join(dirs.Output, "logs")
	}
	return &Store{dirs: dirs, now: time.Now}
}

// SaveStepResult writes <step>_<timestamp>.json under the output root.
func (s *Store) SaveStepResult(step string, result any) (string, error) {
	name := fmt.Sprintf("%s_%s.json", safeName(step), s.stamp())
	return s.writeJSON(s.dirs.Output, name, result)
}

// SaveContent writes <name>_<timestamp>.md under the content root.
func (s *Store) SaveContent(name, content string) (string, error) {
	file := fmt.Sprintf("%s_%s.md", safeName(name), s.stamp())
	return s.write(s.dirs.Content, file, []byte(content))
}

// SaveReport writes workflow_report_<timestamp>.md under the logs root.
func (s *Store) SaveReport(report string) (string, error) {
	return s.write(s.dirs.Logs, fmt.Sprintf("workflow_report_%s.md", s.stamp()), []byte(report))
}

// SaveState writes <workflowID>_state.json under the logs root.
func (s *Store) SaveState(workflowID string, state any) (string, error) {
	return s.writeJSON(s.dirs.Logs, safeName(workflowID)+"_state.json", state)
}

func (s *Store) writeJSON(dir, name string, value any) (string, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.write(dir, name, payload)
}

func (s *Store) write(dir, name string, payload []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) stamp() string {
	return s.now().Format(timestampLayout)
}

func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "artifact"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
}
