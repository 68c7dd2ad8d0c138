// Package filestore lists and reads CSV files from a local import
// directory. File IDs are bare file names; anything that would escape
// the directory is rejected.
package filestore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/assetdesk/importer/internal/csvio"
)

// FileInfo describes one importable file in the drop directory.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Store serves CSV files out of a single directory.
type Store struct {
	dir          string
	maxSizeBytes int64
}

func New(dir string, maxSizeBytes int64) *Store {
	return &Store{dir: dir, maxSizeBytes: maxSizeBytes}
}

// List returns the importable CSV files in the drop directory, newest
// first. Subdirectories and non-CSV files are skipped.
func (s *Store) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading import dir %s: %w", s.dir, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			ID:         e.Name(),
			Name:       e.Name(),
			SizeBytes:  fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

// Stat returns metadata for a single file ID, or fs.ErrNotExist if the
// ID does not resolve to a readable CSV in the drop directory.
func (s *Store) Stat(ctx context.Context, fileID string) (FileInfo, error) {
	path, err := s.resolve(fileID)
	if err != nil {
		return FileInfo{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", fileID, err)
	}
	if fi.IsDir() {
		return FileInfo{}, fmt.Errorf("%s: %w", fileID, fs.ErrNotExist)
	}
	return FileInfo{
		ID:         fileID,
		Name:       fileID,
		SizeBytes:  fi.Size(),
		ModifiedAt: fi.ModTime(),
	}, nil
}

// Read parses the file's full contents as CSV records.
func (s *Store) Read(ctx context.Context, fileID string) ([][]string, error) {
	info, err := s.Stat(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if s.maxSizeBytes > 0 && info.SizeBytes > s.maxSizeBytes {
		return nil, fmt.Errorf("file %s exceeds size limit (%d > %d bytes)", fileID, info.SizeBytes, s.maxSizeBytes)
	}

	path, err := s.resolve(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileID, err)
	}

	records, err := csvio.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileID, err)
	}
	return records, nil
}

// resolve maps a file ID to a path inside the drop directory. IDs with
// path separators or a non-CSV extension are treated as nonexistent
// rather than errors, so callers get a uniform not-found.
func (s *Store) resolve(fileID string) (string, error) {
	if fileID == "" || fileID != filepath.Base(fileID) || strings.HasPrefix(fileID, ".") {
		return "", fmt.Errorf("%s: %w", fileID, fs.ErrNotExist)
	}
	if !strings.EqualFold(filepath.Ext(fileID), ".csv") {
		return "", fmt.Errorf("%s: %w", fileID, fs.ErrNotExist)
	}
	return filepath.Join(s.dir, fileID), nil
}
