// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package model persists fitted estimator state (order statistics
// table + mass map) to disk. The file is a small versioned binary:
// an uncompressed magic/version header followed by a flate-compressed
// body. Saves go through a temp file and an atomic rename.
package model

import (
	"bufio"
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mhardion/damex/pkg/damex"
	"github.com/mhardion/damex/pkg/osutil"
	"github.com/mhardion/damex/pkg/pattern"
)

const (
	fileMagic  = uint32(0xda3e)
	curVersion = uint32(1)
)

// Save writes the fitted state of e to filename.
func Save(filename string, e *damex.Estimator) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	for _, v := range []uint32{fileMagic, curVersion} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	fw, err := flate.NewWriter(buf, flate.BestCompression)
	if err != nil {
		return err
	}
	if err := serialize(fw, snap); err != nil {
		return err
	}
	if err := fw.Close(); err != nil {
		return err
	}
	if err := osutil.MkdirAll(filepath.Dir(filename)); err != nil {
		return err
	}
	tmp := filename + ".tmp"
	if err := osutil.WriteFile(tmp, buf.Bytes()); err != nil {
		return err
	}
	return osutil.Rename(tmp, filename)
}

// Load reads a model file and reconstructs the fitted estimator.
func Load(filename string) (*damex.Estimator, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read model header: %w", err)
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("%v is not a damex model file", filename)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read model header: %w", err)
	}
	if version != curVersion {
		return nil, fmt.Errorf("unsupported model version %v", version)
	}
	fr := flate.NewReader(r)
	defer fr.Close()
	snap, err := deserialize(bufio.NewReader(fr))
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize model: %w", err)
	}
	return damex.FromSnapshot(snap)
}

func serialize(w io.Writer, snap *damex.Snapshot) error {
	for _, v := range []uint64{uint64(snap.N), uint64(snap.Dim), uint64(snap.K)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, v := range []float64{snap.Eps, snap.P, snap.Cutoff, snap.TotalMass} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, col := range snap.Order {
		if err := binary.Write(w, binary.LittleEndian, col); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(snap.Patterns))); err != nil {
		return err
	}
	for _, item := range snap.Patterns {
		if _, err := io.WriteString(w, item.Pattern.Key()); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, item.Mass); err != nil {
			return err
		}
	}
	return nil
}

func deserialize(r io.Reader) (*damex.Snapshot, error) {
	var n, dim, k uint64
	for _, p := range []*uint64{&n, &dim, &k} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, err
		}
	}
	// Bounds the largest allocation a corrupt header can drive before
	// any payload read has a chance to fail.
	const maxDim, maxN = 1 << 20, 1 << 24
	if n == 0 || n > maxN || dim == 0 || dim > maxDim {
		return nil, fmt.Errorf("implausible dimensions n=%v dim=%v", n, dim)
	}
	snap := &damex.Snapshot{N: int(n), Dim: int(dim), K: int(k)}
	for _, p := range []*float64{&snap.Eps, &snap.P, &snap.Cutoff, &snap.TotalMass} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, err
		}
	}
	snap.Order = make([][]float64, dim)
	for j := range snap.Order {
		col := make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, col); err != nil {
			return nil, err
		}
		snap.Order[j] = col
	}
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	keyLen := 8 * ((int(dim) + 63) / 64)
	if count > maxN {
		return nil, fmt.Errorf("implausible pattern count %v", count)
	}
	snap.Patterns = make([]pattern.Item, 0, count)
	keyBuf := make([]byte, keyLen)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, keyBuf); err != nil {
			return nil, err
		}
		pat, err := pattern.FromKey(string(keyBuf), int(dim))
		if err != nil {
			return nil, err
		}
		var mass float64
		if err := binary.Read(r, binary.LittleEndian, &mass); err != nil {
			return nil, err
		}
		snap.Patterns = append(snap.Patterns, pattern.Item{Pattern: pat, Mass: mass})
	}
	return snap, nil
}
