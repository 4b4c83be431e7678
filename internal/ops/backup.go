package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Summary describes what a backup or restore touched.
type Summary struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Backup archives every regular file under dataDir (slot JSON files and the
// sqlite database) into a gzip-compressed tar at archivePath.
func Backup(dataDir, archivePath string) (Summary, error) {
	var sum Summary
	if strings.TrimSpace(dataDir) == "" || strings.TrimSpace(archivePath) == "" {
		return sum, errors.New("data dir and archive path are required")
	}
	dataDir = filepath.Clean(strings.TrimSpace(dataDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))

	info, err := os.Stat(dataDir)
	if err != nil {
		return sum, err
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("not a directory: %s", dataDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return sum, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return sum, err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		n, err := addFile(tw, path, filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("archive %s: %w", rel, err)
		}
		sum.Files++
		sum.Bytes += n
		return nil
	})

	// close in reverse order and keep the first error
	closeErr := errors.Join(tw.Close(), gz.Close(), f.Close())
	if walkErr != nil {
		_ = os.Remove(archivePath)
		return Summary{}, walkErr
	}
	if closeErr != nil {
		return Summary{}, closeErr
	}
	return sum, nil
}

func addFile(tw *tar.Writer, path, name string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return 0, err
	}
	return io.Copy(tw, src)
}

// Restore unpacks an archive produced by Backup into targetDir. Entries that
// would land outside targetDir are rejected.
func Restore(archivePath, targetDir string) (Summary, error) {
	var sum Summary
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if strings.TrimSpace(archivePath) == "" || targetDir == "." {
		return sum, errors.New("archive path and target dir are required")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return sum, err
	}
	defer gz.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return sum, err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return sum, err
		}
		n, err := writeFile(filepath.Join(targetDir, rel), tr)
		if err != nil {
			return sum, err
		}
		sum.Files++
		sum.Bytes += n
	}
}

func writeFile(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func safeRelPath(name string) (string, error) {
	name = filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	switch {
	case name == "." || name == "":
		return "", errors.New("empty archive entry name")
	case filepath.IsAbs(name):
		return "", fmt.Errorf("absolute archive entry: %s", name)
	case name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return name, nil
}
