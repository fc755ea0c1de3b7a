package vectorDB

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	_ "modernc.org/sqlite"
)

var (
	errBundleAbsent  = errors.New("vector store bundle absent")
	errBundlePartial = errors.New("vector store bundle partially present")
	errBundleCorrupt = errors.New("vector store bundle corrupt")
)

const (
	vecMagic   = "PVEC"
	vecVersion = uint32(1)

	maxGenerationLen = 64
	maxVectorDim     = 1 << 16
)

// bundleStore reads and writes the three artifacts of the index:
// raw vectors, the chunk docstore and the document metadata table.
// All three carry the generation id of the snapshot they were written from.
type bundleStore struct {
	dir string
}

type bundle struct {
	generation string
	entries    []commonModels.IndexedVector
	records    []commonModels.DocumentRecord
}

type docstoreFile struct {
	Generation string                       `json:"generation"`
	Entries    []commonModels.IndexedVector `json:"entries"`
}

func (b *bundleStore) path(name string) string {
	return filepath.Join(b.dir, name)
}

func (b *bundleStore) files() []string {
	return []string{
		b.path(config.IndexVectorsFile),
		b.path(config.IndexDocsFile),
		b.path(config.MetadataFile),
	}
}

// save writes every artifact to a temp file and then renames them into place.
// A crash between renames leaves mismatched generations, which load treats as partial.
func (b *bundleStore) save(ctx context.Context, snap *snapshot, records []commonModels.DocumentRecord) error {
	if err := os.MkdirAll(b.dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", b.dir, err)
	}

	final := b.files()
	tmp := make([]string, len(final))
	for i, f := range final {
		tmp[i] = f + ".tmp"
	}
	defer func() {
		for _, t := range tmp {
			_ = os.Remove(t)
		}
	}()

	if err := writeVectors(tmp[0], snap); err != nil {
		return err
	}
	if err := writeDocstore(tmp[1], snap); err != nil {
		return err
	}
	if err := writeMetadata(ctx, tmp[2], snap.generation, records); err != nil {
		return err
	}

	for i := range final {
		if err := os.Rename(tmp[i], final[i]); err != nil {
			return fmt.Errorf("publishing %s: %w", final[i], err)
		}
	}
	return nil
}

func (b *bundleStore) load(ctx context.Context) (*bundle, error) {
	present := 0
	for _, f := range b.files() {
		if _, err := os.Stat(f); err == nil {
			present++
		}
	}
	switch present {
	case 0:
		return nil, errBundleAbsent
	case len(b.files()):
	default:
		return nil, errBundlePartial
	}

	gen, vectors, err := readVectors(b.path(config.IndexVectorsFile))
	if err != nil {
		return nil, err
	}
	docs, err := readDocstore(b.path(config.IndexDocsFile))
	if err != nil {
		return nil, err
	}
	metaGen, records, err := readMetadata(ctx, b.path(config.MetadataFile))
	if err != nil {
		return nil, err
	}

	if gen != docs.Generation || gen != metaGen {
		return nil, fmt.Errorf("generations differ (%s/%s/%s): %w", gen, docs.Generation, metaGen, errBundlePartial)
	}
	if len(vectors) != len(docs.Entries) {
		return nil, fmt.Errorf("%d vectors for %d docstore entries: %w", len(vectors), len(docs.Entries), errBundleCorrupt)
	}
	for i := range docs.Entries {
		docs.Entries[i].Vector = vectors[i]
	}

	return &bundle{generation: gen, entries: docs.Entries, records: records}, nil
}

func writeVectors(path string, snap *snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := []any{
		[]byte(vecMagic),
		vecVersion,
		uint16(len(snap.generation)),
		[]byte(snap.generation),
		uint32(len(snap.entries)),
		uint32(snap.dim),
	}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("writing vector header: %w", err)
		}
	}
	for _, e := range snap.entries {
		if err := binary.Write(w, binary.LittleEndian, e.Vector); err != nil {
			return fmt.Errorf("writing vectors: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing vectors: %w", err)
	}
	return f.Sync()
}

func readVectors(path string) (string, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	r := bufio.NewReader(f)

	magic := make([]byte, len(vecMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != vecMagic {
		return "", nil, fmt.Errorf("bad vector file magic: %w", errBundleCorrupt)
	}
	var version uint32
	var genLen uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil || version != vecVersion {
		return "", nil, fmt.Errorf("unsupported vector file version %d: %w", version, errBundleCorrupt)
	}
	if err := binary.Read(r, binary.LittleEndian, &genLen); err != nil {
		return "", nil, fmt.Errorf("reading generation: %w", errBundleCorrupt)
	}
	if genLen > maxGenerationLen {
		return "", nil, fmt.Errorf("generation length %d: %w", genLen, errBundleCorrupt)
	}
	gen := make([]byte, genLen)
	if _, err := io.ReadFull(r, gen); err != nil {
		return "", nil, fmt.Errorf("reading generation: %w", errBundleCorrupt)
	}
	var count, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return "", nil, fmt.Errorf("reading count: %w", errBundleCorrupt)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return "", nil, fmt.Errorf("reading dimension: %w", errBundleCorrupt)
	}
	if dim > maxVectorDim || (count > 0 && dim == 0) {
		return "", nil, fmt.Errorf("vector dimension %d: %w", dim, errBundleCorrupt)
	}
	// header: magic, version, generation length, generation, count, dim
	headerLen := uint64(len(vecMagic)) + 4 + 2 + uint64(genLen) + 4 + 4
	if uint64(stat.Size()) < headerLen || uint64(count)*uint64(dim)*4 != uint64(stat.Size())-headerLen {
		return "", nil, fmt.Errorf("header declares %d vectors of %d dims, file has %d bytes: %w", count, dim, stat.Size(), errBundleCorrupt)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return "", nil, fmt.Errorf("reading vector %d: %w", i, errBundleCorrupt)
		}
		vectors[i] = v
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return "", nil, fmt.Errorf("trailing bytes in vector file: %w", errBundleCorrupt)
	}
	return string(gen), vectors, nil
}

func writeDocstore(path string, snap *snapshot) error {
	data, err := json.Marshal(docstoreFile{Generation: snap.generation, Entries: snap.entries})
	if err != nil {
		return fmt.Errorf("encoding docstore: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("writing docstore: %w", err)
	}
	return nil
}

func readDocstore(path string) (*docstoreFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading docstore: %w", err)
	}
	var d docstoreFile
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding docstore: %v: %w", err, errBundleCorrupt)
	}
	return &d, nil
}

var metadataSchema = []string{
	`CREATE TABLE bundle (generation TEXT NOT NULL)`,
	`CREATE TABLE documents (
	document_id  TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	chunks_count INTEGER NOT NULL,
	uploaded_at  TEXT NOT NULL,
	size         INTEGER NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
)`,
}

func writeMetadata(ctx context.Context, path, generation string, records []commonModels.DocumentRecord) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening metadata db: %w", err)
	}
	defer db.Close()

	for _, stmt := range metadataSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating metadata schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting metadata tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO bundle (generation) VALUES (?)`, generation); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents
		(document_id, filename, chunks_count, uploaded_at, size, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.DocumentID, r.Filename, r.ChunksCount,
			r.UploadedAt.UTC().Format(time.RFC3339Nano), r.Size, string(r.Status), r.Error); err != nil {
			return fmt.Errorf("writing record %s: %w", r.DocumentID, err)
		}
	}
	return tx.Commit()
}

// readMetadata keeps rows whose timestamp does not parse; they carry a zero
// UploadedAt and are filtered when listing.
func readMetadata(ctx context.Context, path string) (string, []commonModels.DocumentRecord, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", nil, fmt.Errorf("opening metadata db: %w", err)
	}
	defer db.Close()

	var generation string
	if err := db.QueryRowContext(ctx, `SELECT generation FROM bundle LIMIT 1`).Scan(&generation); err != nil {
		return "", nil, fmt.Errorf("reading generation: %v: %w", err, errBundleCorrupt)
	}

	rows, err := db.QueryContext(ctx, `SELECT document_id, filename, chunks_count, uploaded_at, size, status, error FROM documents`)
	if err != nil {
		return "", nil, fmt.Errorf("reading records: %v: %w", err, errBundleCorrupt)
	}
	defer rows.Close()

	var records []commonModels.DocumentRecord
	for rows.Next() {
		var r commonModels.DocumentRecord
		var uploadedAt, status string
		if err := rows.Scan(&r.DocumentID, &r.Filename, &r.ChunksCount, &uploadedAt, &r.Size, &status, &r.Error); err != nil {
			return "", nil, fmt.Errorf("scanning record: %v: %w", err, errBundleCorrupt)
		}
		r.Status = commonModels.DocumentStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, uploadedAt); err == nil {
			r.UploadedAt = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("iterating records: %v: %w", err, errBundleCorrupt)
	}
	return generation, records, nil
}
