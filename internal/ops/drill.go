package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DrillResult reports a backup/restore rehearsal.
type DrillResult struct {
	Archive    string `json:"archive"`
	RestoreDir string `json:"restore_dir"`
	Digest     string `json:"digest"`
}

// Drill backs up dataDir into workDir, restores the archive next to it and
// checks that both trees hash the same.
func Drill(dataDir, workDir string, now time.Time) (DrillResult, error) {
	var res DrillResult
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return res, err
	}
	ts := now.UTC().Format("20060102T150405Z")
	res.Archive = filepath.Join(workDir, "todo-drill-"+ts+".tar.gz")
	res.RestoreDir = filepath.Join(workDir, "todo-drill-restore-"+ts)

	if _, err := Backup(dataDir, res.Archive); err != nil {
		return res, err
	}
	if _, err := Restore(res.Archive, res.RestoreDir); err != nil {
		return res, err
	}

	src, err := Digest(dataDir)
	if err != nil {
		return res, err
	}
	restored, err := Digest(res.RestoreDir)
	if err != nil {
		return res, err
	}
	if src != restored {
		return res, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", src, restored)
	}
	res.Digest = src
	return res, nil
}

// Digest hashes the relative names and contents of every regular file under
// root in sorted order.
func Digest(root string) (string, error) {
	root = filepath.Clean(root)
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel+"\n")
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		_, _ = h.Write(b)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
