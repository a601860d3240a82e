// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package fsutil provides the filesystem operations behind the script fs
// object. Files are created 0644 and directories 0755, subject to umask.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// DirPerm is the permission mode for created directories.
const DirPerm os.FileMode = 0755

// FilePerm is the permission mode for created files.
const FilePerm os.FileMode = 0644

// ReadDirNames returns the names of the entries in dir, sorted.
func ReadDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	return names, nil
}

// WriteFile replaces the contents of path, creating it if needed.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, FilePerm)
}

// Mkdir creates a single directory. It fails if the parent is missing or
// the directory already exists.
func Mkdir(path string) error {
	return os.Mkdir(path, DirPerm)
}

// MkdirAll creates a directory and all missing parents.
func MkdirAll(path string) error {
	return os.MkdirAll(path, DirPerm)
}

// RemoveFile removes a file or symlink but never a directory.
func RemoveFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return os.Remove(path)
}

// RemoveDir removes an empty directory.
func RemoveDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return os.Remove(path)
}

// RemoveAll removes a directory and everything under it. Unlike
// os.RemoveAll it fails when path does not exist.
func RemoveAll(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return os.RemoveAll(path)
}

// CopyFile copies the contents and permission bits of src to dst and
// returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		_ = out.Close()
		return n, fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	return n, out.Close()
}
