// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package osutil holds the small set of file helpers the repo uses.
package osutil

import (
	"io"
	"os"
)

const (
	DefaultDirPerm  = 0755
	DefaultFilePerm = 0644
)

func WriteFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, DefaultFilePerm)
}

func MkdirAll(dir string) error {
	return os.MkdirAll(dir, DefaultDirPerm)
}

// Rename is similar to os.Rename but handles cross-device renames
// by falling back to copy+delete.
func Rename(oldFile, newFile string) error {
	if err := os.Rename(oldFile, newFile); err == nil {
		return nil
	}
	if err := CopyFile(oldFile, newFile); err != nil {
		return err
	}
	return os.Remove(oldFile)
}

func CopyFile(oldFile, newFile string) error {
	oldf, err := os.Open(oldFile)
	if err != nil {
		return err
	}
	defer oldf.Close()
	newf, err := os.OpenFile(newFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePerm)
	if err != nil {
		return err
	}
	defer newf.Close()
	if _, err := io.Copy(newf, oldf); err != nil {
		return err
	}
	return newf.Close()
}
