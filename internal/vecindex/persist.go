package vecindex

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/codescout/codescout/pkg/types"
)

// Snapshot artifact names. A snapshot directory holds both; they are
// linked by their entry counts and only valid together.
const (
	VectorsFile   = "vectors.bin"
	DocumentsFile = "documents.db"

	snapshotMagic   uint32 = 0x43535658 // "CSVX"
	snapshotVersion uint32 = 1

	vectorHeaderSize = 20 // magic + version + dimension (uint32) + count (uint64)
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	ordinal   INTEGER PRIMARY KEY,
	kind      TEXT NOT NULL,
	name      TEXT NOT NULL,
	path      TEXT NOT NULL,
	line      INTEGER NOT NULL DEFAULT 0,
	docstring TEXT NOT NULL DEFAULT '',
	code      TEXT NOT NULL DEFAULT '',
	extra     TEXT NOT NULL DEFAULT ''
);
`

// Save persists the index into dir as two artifacts: the packed vector
// buffer and the ordered document database. Existing artifacts are
// replaced. The vector buffer is written to a temporary file and renamed
// so a crash mid-write never leaves a truncated artifact behind.
func (ix *FlatIndex) Save(dir string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	if err := ix.saveVectorsLocked(filepath.Join(dir, VectorsFile)); err != nil {
		return err
	}
	return ix.saveDocumentsLocked(filepath.Join(dir, DocumentsFile))
}

// Load replaces the index contents with a previously saved snapshot. Both
// artifacts are read and validated in full before any in-memory state is
// touched: on any error the prior contents remain visible. Load refuses to
// read a document database that is world-writable, or one living in a
// world-writable directory — a tamperable metadata artifact is not trusted.
func (ix *FlatIndex) Load(dir string) error {
	vecPath := filepath.Join(dir, VectorsFile)
	docPath := filepath.Join(dir, DocumentsFile)

	for _, p := range []string{vecPath, docPath} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrMissingArtifact, filepath.Base(p))
			}
			return fmt.Errorf("inspecting snapshot artifact %s: %w", filepath.Base(p), err)
		}
	}

	if err := checkTrusted(docPath); err != nil {
		return err
	}

	dim, vectors, count, err := readVectors(vecPath)
	if err != nil {
		return err
	}

	docs, err := readDocuments(docPath)
	if err != nil {
		return err
	}

	if len(docs) != count {
		return fmt.Errorf("%w: %d vectors, %d documents", ErrCorruptSnapshot, count, len(docs))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = dim
	ix.vectors = vectors
	ix.docs = docs
	return nil
}

// saveVectorsLocked writes the vector artifact. Caller must hold ix.mu.
func (ix *FlatIndex) saveVectorsLocked(path string) error {
	count := len(ix.docs)
	blob := make([]byte, vectorHeaderSize+len(ix.vectors)*4)
	binary.LittleEndian.PutUint32(blob[0:], snapshotMagic)
	binary.LittleEndian.PutUint32(blob[4:], snapshotVersion)
	binary.LittleEndian.PutUint32(blob[8:], uint32(ix.dim))
	binary.LittleEndian.PutUint64(blob[12:], uint64(count))
	for i, v := range ix.vectors {
		binary.LittleEndian.PutUint32(blob[vectorHeaderSize+i*4:], math.Float32bits(v))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("writing vector artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing vector artifact: %w", err)
	}
	return nil
}

// saveDocumentsLocked writes the ordered document database. Caller must
// hold ix.mu.
func (ix *FlatIndex) saveDocumentsLocked(path string) error {
	// SQLite has no cheap truncate-and-replace; start from a fresh file.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale document artifact: %w", err)
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return fmt.Errorf("opening document artifact: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(documentsSchema); err != nil {
		return fmt.Errorf("creating document schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting document write: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO documents
		(ordinal, kind, name, path, line, docstring, code, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, doc := range ix.docs {
		extra := ""
		if len(doc.Extra) > 0 {
			encoded, err := json.Marshal(doc.Extra)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("encoding document %d extra fields: %w", i, err)
			}
			extra = string(encoded)
		}
		if _, err := stmt.Exec(i, string(doc.Kind), doc.Name, doc.Path, doc.Line, doc.Docstring, doc.Code, extra); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("writing document %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document write: %w", err)
	}
	return nil
}

// readVectors parses and validates the vector artifact.
func readVectors(path string) (dim int, vectors []float32, count int, err error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("reading vector artifact: %w", err)
	}
	if len(blob) < vectorHeaderSize {
		return 0, nil, 0, fmt.Errorf("%w: vector artifact truncated", ErrCorruptSnapshot)
	}
	if binary.LittleEndian.Uint32(blob[0:]) != snapshotMagic {
		return 0, nil, 0, fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	if v := binary.LittleEndian.Uint32(blob[4:]); v != snapshotVersion {
		return 0, nil, 0, fmt.Errorf("%w: unsupported snapshot version %d", ErrCorruptSnapshot, v)
	}

	dim = int(binary.LittleEndian.Uint32(blob[8:]))
	count = int(binary.LittleEndian.Uint64(blob[12:]))
	if dim <= 0 || count < 0 {
		return 0, nil, 0, fmt.Errorf("%w: dimension %d, count %d", ErrCorruptSnapshot, dim, count)
	}

	payload := blob[vectorHeaderSize:]
	if len(payload) != count*dim*4 {
		return 0, nil, 0, fmt.Errorf("%w: expected %d vector bytes, found %d", ErrCorruptSnapshot, count*dim*4, len(payload))
	}

	vectors = make([]float32, count*dim)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return dim, vectors, count, nil
}

// readDocuments loads the ordered document list from the metadata
// database.
func readDocuments(path string) ([]types.Document, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening document artifact: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT kind, name, path, line, docstring, code, extra
		FROM documents ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading documents: %v", ErrCorruptSnapshot, err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]types.Document, 0)
	for rows.Next() {
		var doc types.Document
		var kind, extra string
		if err := rows.Scan(&kind, &doc.Name, &doc.Path, &doc.Line, &doc.Docstring, &doc.Code, &extra); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", ErrCorruptSnapshot, err)
		}
		doc.Kind = types.DocumentKind(kind)
		if err := doc.ValidateKind(); err != nil {
			return nil, fmt.Errorf("%w: document %d has kind %q", ErrCorruptSnapshot, len(docs), kind)
		}
		if extra != "" {
			if err := json.Unmarshal([]byte(extra), &doc.Extra); err != nil {
				return nil, fmt.Errorf("%w: document %d extra fields: %v", ErrCorruptSnapshot, len(docs), err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading documents: %v", ErrCorruptSnapshot, err)
	}
	return docs, nil
}

// checkTrusted rejects a metadata artifact that other local users could
// rewrite: deserializing attacker-controlled metadata is a security
// contract, not just a correctness one.
func checkTrusted(path string) error {
	const worldWritable = 0o002

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inspecting snapshot artifact: %w", err)
	}
	if info.Mode().Perm()&worldWritable != 0 {
		return fmt.Errorf("%w: %s", ErrUntrustedArtifact, path)
	}

	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("inspecting snapshot directory: %w", err)
	}
	if dirInfo.Mode().Perm()&worldWritable != 0 {
		return fmt.Errorf("%w: directory %s", ErrUntrustedArtifact, filepath.Dir(path))
	}
	return nil
}
