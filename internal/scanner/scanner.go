package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/codescout/codescout/pkg/types"
)

// DefaultMaxFileSize skips files larger than 1 MB.
const DefaultMaxFileSize int64 = 1 << 20

// DefaultMaxExcerpt bounds the code excerpt stored on a document.
const DefaultMaxExcerpt = 1200

// sourceExtensions are the file types picked up by Scan. Extensions
// without a registered Extractor still produce a whole-file document.
var sourceExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".java": true,
	".rs":   true,
	".rb":   true,
	".c":    true,
	".h":    true,
	".cpp":  true,
}

// Extractor parses one file into named sub-structure documents.
// Implementations are registered per file extension.
type Extractor interface {
	Extract(relPath string, src []byte) ([]types.Document, error)
}

// Config controls scanner construction.
type Config struct {
	IgnoreFile  string // Glob pattern file; default DefaultIgnoreFile resolved under the scan root
	MaxFileSize int64  // 0 = DefaultMaxFileSize
	MaxExcerpt  int    // 0 = DefaultMaxExcerpt
}

// Stats counts the outcome of one ScanDocuments call.
type Stats struct {
	FilesScanned int
	Functions    int
	Classes      int
	Failed       int
}

// Scanner walks a directory tree and extracts indexable documents.
type Scanner struct {
	ignore      *IgnoreList
	ignoreFile  string
	extractors  map[string]Extractor
	maxFileSize int64
	maxExcerpt  int
	logger      *zap.Logger
}

// New creates a scanner. When cfg.IgnoreFile names an existing file its
// patterns are loaded once, here; a relative default is resolved lazily
// against the scan root. Go and Python structural extractors are
// registered out of the box.
func New(cfg Config, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scanner{
		ignoreFile:  cfg.IgnoreFile,
		extractors:  make(map[string]Extractor),
		maxFileSize: cfg.MaxFileSize,
		maxExcerpt:  cfg.MaxExcerpt,
		logger:      logger,
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.maxExcerpt <= 0 {
		s.maxExcerpt = DefaultMaxExcerpt
	}

	if cfg.IgnoreFile != "" {
		list, err := LoadIgnoreList(cfg.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("loading ignore file %s: %w", cfg.IgnoreFile, err)
		}
		s.ignore = list
	}

	s.RegisterExtractor(".go", NewGoExtractor())
	s.RegisterExtractor(".py", NewPythonExtractor())
	return s, nil
}

// RegisterExtractor installs a structural extractor for a file extension,
// replacing any previous one.
func (s *Scanner) RegisterExtractor(ext string, ex Extractor) {
	s.extractors[strings.ToLower(ext)] = ex
}

// Scan walks root and returns the relative paths of every indexable
// source file, in deterministic (lexical walk) order.
func (s *Scanner) Scan(root string) ([]string, error) {
	ignore, err := s.ignoreList(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			s.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && ignore.IgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ignore.Match(relPath) {
			return nil
		}

		if info, err := d.Info(); err != nil || info.Size() > s.maxFileSize {
			return nil
		}

		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// ScanDocuments walks root and returns every indexable document: one
// whole-file document per source file plus the named structures its
// extractor finds. Per-file read or parse failures are counted, logged,
// and skipped.
func (s *Scanner) ScanDocuments(root string) ([]types.Document, Stats, error) {
	files, err := s.Scan(root)
	if err != nil {
		return nil, Stats{}, err
	}

	var stats Stats
	docs := make([]types.Document, 0, len(files)*2)

	for _, relPath := range files {
		src, err := os.ReadFile(filepath.Join(root, relPath))
		if err != nil {
			stats.Failed++
			s.logger.Warn("skipping unreadable file", zap.String("path", relPath), zap.Error(err))
			continue
		}

		stats.FilesScanned++
		docs = append(docs, s.fileDocument(relPath, src))

		ex, ok := s.extractors[strings.ToLower(filepath.Ext(relPath))]
		if !ok {
			continue
		}

		structures, err := ex.Extract(relPath, src)
		if err != nil {
			stats.Failed++
			s.logger.Warn("skipping unparsable file", zap.String("path", relPath), zap.Error(err))
			continue
		}

		for i := range structures {
			structures[i].Code = truncate(structures[i].Code, s.maxExcerpt)
			switch structures[i].Kind {
			case types.DocFunction:
				stats.Functions++
			case types.DocClass:
				stats.Classes++
			}
		}
		docs = append(docs, structures...)
	}

	return docs, stats, nil
}

// fileDocument builds the whole-file document for a source file.
func (s *Scanner) fileDocument(relPath string, src []byte) types.Document {
	return types.Document{
		Kind: types.DocFile,
		Name: filepath.Base(relPath),
		Path: relPath,
		Code: truncate(string(src), s.maxExcerpt),
	}
}

// ignoreList returns the construction-time list, or reads the default
// ignore file under root when none was configured.
func (s *Scanner) ignoreList(root string) (*IgnoreList, error) {
	if s.ignore != nil {
		return s.ignore, nil
	}
	list, err := LoadIgnoreList(filepath.Join(root, DefaultIgnoreFile))
	if err != nil {
		return nil, fmt.Errorf("loading ignore file: %w", err)
	}
	return list, nil
}

// truncate cuts text to at most max bytes without splitting a multi-byte
// rune at the boundary.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r == utf8.RuneError && size == 1 {
			cut = cut[:len(cut)-1]
			continue
		}
		break
	}
	return cut
}
