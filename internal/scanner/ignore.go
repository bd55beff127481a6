package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnoreFile is the per-project ignore file read at construction.
const DefaultIgnoreFile = ".scoutignore"

// defaultIgnoreDirs are directory names excluded on every scan.
var defaultIgnoreDirs = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	"dist",
	"build",
	"target",
	".idea",
	".vscode",
}

// IgnoreList combines the static directory set with user glob patterns.
type IgnoreList struct {
	patterns []string
}

// LoadIgnoreList reads glob patterns from the given file, one per line.
// Blank lines and '#' comments are skipped. A missing file yields an
// empty list.
func LoadIgnoreList(path string) (*IgnoreList, error) {
	list := &IgnoreList{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return list, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.patterns = append(list.patterns, line)
	}
	return list, sc.Err()
}

// IgnoreDir reports whether an entire directory subtree should be
// skipped.
func (l *IgnoreList) IgnoreDir(name string) bool {
	for _, d := range defaultIgnoreDirs {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

// Match reports whether a file's slash-separated relative path matches
// any user pattern. Patterns without a slash match against the base name
// as well, mirroring gitignore behavior.
func (l *IgnoreList) Match(relPath string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, pattern := range l.patterns {
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}
