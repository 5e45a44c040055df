package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore keeps each aggregate in its own CSV file under root:
//
//	<root>/all_scraped_master.csv
//	<root>/<query>.csv               (or <root>/<YYYY-MM-DD>/<query>.csv when dated)
type CSVStore struct {
	root  string
	dated bool
	now   func() time.Time
}

// NewCSVStore creates a store rooted at dir. Directories are created on
// first save.
func NewCSVStore(dir string, datedQueryDirs bool) *CSVStore {
	return &CSVStore{root: dir, dated: datedQueryDirs, now: time.Now}
}

// Path returns the file backing id.
func (s *CSVStore) Path(id TableID) string {
	if id.IsMaster() || !s.dated {
		return filepath.Join(s.root, id.Name()+".csv")
	}
	return filepath.Join(s.root, s.now().Format("2006-01-02"), id.Name()+".csv")
}

// Load reads the table for id. A missing file yields ErrTableNotFound; a
// file that cannot be parsed yields an error wrapping the csv error.
func (s *CSVStore) Load(ctx context.Context, id TableID) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(id)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := readTable(f)
	if err != nil {
		return nil, fmt.Errorf("csv: parse %q: %w", path, err)
	}
	return t, nil
}

func readTable(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if first3, _ := br.Peek(3); len(first3) == 3 && string(first3) == string(utf8BOM) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Save writes t to a temporary file next to the target, syncs it and renames
// it over the target, so a failed save leaves the previous file intact.
func (s *CSVStore) Save(ctx context.Context, id TableID, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(id)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeTable(tmp, t); err != nil {
		return fmt.Errorf("csv: write %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("csv: sync %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("csv: replace %q: %w", path, err)
	}
	committed = true
	return nil
}

func writeTable(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// Close is a no-op; files are closed after every operation.
func (s *CSVStore) Close() error { return nil }
