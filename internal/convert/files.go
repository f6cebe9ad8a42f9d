// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/lutetab/internal/mei"
	"github.com/pdiddy/lutetab/internal/tablature"
	"github.com/pdiddy/lutetab/pkg/types"
)

// fileSHA256 returns the hex SHA-256 of the file at path.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst through a temporary file in dst's directory so
// readers never observe a partial copy.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &mei.IOError{Op: "read", Path: src, Err: err}
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &mei.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".lutetab-*.tmp")
	if err != nil {
		return &mei.IOError{Op: "create", Path: dst, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &mei.IOError{Op: "write", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &mei.IOError{Op: "write", Path: dst, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &mei.IOError{Op: "chmod", Path: dst, Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return &mei.IOError{Op: "rename", Path: dst, Err: err}
	}
	return nil
}

// ClassifyError maps a conversion error to the class stored in the ledger.
func ClassifyError(err error) types.ErrorClass {
	var (
		parseErr  *mei.ParseError
		structErr *tablature.StructuralError
		ioErr     *mei.IOError
		pathErr   *fs.PathError
	)
	switch {
	case err == nil:
		return types.ErrorNone
	case errors.As(err, &parseErr):
		return types.ErrorParse
	case errors.As(err, &structErr):
		return types.ErrorStructural
	case errors.As(err, &ioErr), errors.As(err, &pathErr):
		return types.ErrorIO
	default:
		return types.ErrorOther
	}
}
