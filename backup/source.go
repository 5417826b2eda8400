package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyBackup is returned for backup files holding only whitespace.
var ErrEmptyBackup = errors.New("backup file is empty")

// FileSource reads backups from the local filesystem. Dir, when set, is
// joined with relative path hints.
type FileSource struct {
	Dir string
}

func (s FileSource) ReadBackup(ctx context.Context, pathHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(pathHint) == "" {
		return "", fmt.Errorf("missing backup file path")
	}

	path := pathHint
	if s.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read backup file: %w", err)
	}

	// Exports written on Windows carry a BOM.
	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrEmptyBackup
	}
	return text, nil
}
