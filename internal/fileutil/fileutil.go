package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

// ErrVerifyFailed is returned when a copied file does not match its source.
var ErrVerifyFailed = errors.New("copy verification failed")

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// CopyFile copies src to dst, creating dst's directory. The copy is read
// back and compared with the source digest; a mismatching dst is removed.
// It returns the number of bytes written.
func CopyFile(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("%s is a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return 0, err
	}

	in, err := os.Open(src) //nolint:gosec // source paths come from indexed catalogs
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode) //nolint:gosec // destination is under the load target
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha3.New256()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return written, fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrVerifyFailed, srcInfo.Size(), written)
	}

	dstSum, err := Digest(dst)
	if err != nil {
		return written, err
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		_ = os.Remove(dst)
		return written, fmt.Errorf("%w: %s differs from %s", ErrVerifyFailed, dst, src)
	}
	return written, nil
}

// Digest returns the SHA3-256 digest of a file.
func Digest(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // caller-controlled path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// CopyTree copies every regular file under src into dst, keeping the
// relative layout. Symlinks are not followed.
func CopyTree(src, dst string) (files int, err error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", src)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, dirMode)
		case d.Type().IsRegular():
			if _, err := CopyFile(path, target); err != nil {
				return err
			}
			files++
		}
		return nil
	})
	return files, err
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
