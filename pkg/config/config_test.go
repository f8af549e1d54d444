// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Eps   float64 `json:"eps"`
	KRule string  `json:"k_rule"`
}

func TestLoadData(t *testing.T) {
	data := []byte(`
# tuned on the validation split
{
	"eps": 1.5,
	# the default rule
	"k_rule": "sqrt"
}
`)
	var cfg testConfig
	require.NoError(t, LoadData(data, &cfg))
	assert.Equal(t, 1.5, cfg.Eps)
	assert.Equal(t, "sqrt", cfg.KRule)
}

func TestUnknownField(t *testing.T) {
	var cfg testConfig
	err := LoadData([]byte(`{"eps": 1, "epss": 2}`), &cfg)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	var cfg testConfig
	assert.Error(t, LoadFile("", &cfg))
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.cfg"), &cfg))

	file := filepath.Join(t.TempDir(), "damex.cfg")
	require.NoError(t, os.WriteFile(file, []byte(`{"eps": 0.5}`), 0644))
	require.NoError(t, LoadFile(file, &cfg))
	assert.Equal(t, 0.5, cfg.Eps)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "damex.cfg")
	want := testConfig{Eps: 2, KRule: "frac:0.05"}
	require.NoError(t, SaveFile(file, &want))
	var got testConfig
	require.NoError(t, LoadFile(file, &got))
	assert.Equal(t, want, got)
}
