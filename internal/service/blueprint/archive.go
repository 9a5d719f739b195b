package blueprint

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"terraai/internal/domain/models"
)

// ArchiveName returns the download name for a project's files.
func ArchiveName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultTitle
	}
	return title + "-terraform.zip"
}

// WriteArchive writes files as a flat zip, in name order.
func WriteArchive(w io.Writer, files models.FileSet) error {
	zw := zip.NewWriter(w)

	for _, name := range files.Names() {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return zw.Close()
}

// ImportResult reports what ReadArchive took from a zip.
type ImportResult struct {
	Files   models.FileSet `json:"files"`
	Skipped []string       `json:"skipped"`
}

// ReadArchive extracts a zip produced by WriteArchive (or by hand). Entries
// are flattened to their base name; directories, names a file marker could
// not produce and entries beyond maxFiles are skipped.
func ReadArchive(data []byte, maxFiles int) (*ImportResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file: %w", err)
	}

	result := &ImportResult{Files: models.FileSet{}, Skipped: []string{}}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Base(entry.Name)
		if strings.HasPrefix(entry.Name, "__MACOSX/") || !FileNamePattern.MatchString(name) {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}
		if len(result.Files) >= maxFiles {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}

		content, err := readEntry(entry)
		if err != nil {
			return nil, err
		}
		result.Files[name] = content
	}

	return result, nil
}

func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", entry.Name, err)
	}
	return string(b), nil
}
