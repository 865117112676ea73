package filex

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// EnsureSubDir creates (if needed) and returns a subdirectory of parent.
func EnsureSubDir(parent, name string) (string, error) {
	dir := filepath.Join(parent, name)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

func sumFile(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MD5Sum returns the hex MD5 digest of the file at path. Upload manifests
// still declare MD5 in their Files stanza, so verification needs it even
// though it is not collision resistant.
func MD5Sum(path string) (string, error) {
	return sumFile(path, md5.New())
}

// SHA256Sum returns the hex SHA-256 digest of the file at path.
func SHA256Sum(path string) (string, error) {
	return sumFile(path, sha256.New())
}
