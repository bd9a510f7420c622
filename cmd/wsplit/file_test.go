// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/wsplit"
)

func TestStem(t *testing.T) {
	tests := []struct{ name, want string }{
		{"rom.bin", "rom"},
		{"rom", "rom"},
		{"rom.img.bin", "rom.img"},
		{".bin", ".bin"},
	}
	for _, tc := range tests {
		if g := stem(tc.name); g != tc.want {
			t.Fatalf("stem(%q) is %q; want %q", tc.name, g, tc.want)
		}
	}
}

func TestOutputNames(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		base, prefix string
		lower, upper string
	}{
		{
			base:  "rom.bin",
			lower: "rom" + lowerSuffix,
			upper: "rom" + upperSuffix,
		},
		{
			base:   "rom.bin",
			prefix: dir,
			lower:  filepath.Join(dir, "rom"+lowerSuffix),
			upper:  filepath.Join(dir, "rom"+upperSuffix),
		},
		{
			base:   "rom.bin",
			prefix: filepath.Join(dir, "target.bin"),
			lower:  filepath.Join(dir, "target"+lowerSuffix),
			upper:  filepath.Join(dir, "target"+upperSuffix),
		},
		{
			base:   "rom.bin",
			prefix: "out",
			lower:  "out" + lowerSuffix,
			upper:  "out" + upperSuffix,
		},
	}
	for _, tc := range tests {
		lower, upper, err := outputNames(tc.base, tc.prefix)
		if err != nil {
			t.Fatalf("outputNames(%q, %q) error %s", tc.base,
				tc.prefix, err)
		}
		if lower != tc.lower {
			t.Fatalf("outputNames(%q, %q) lower is %q; want %q",
				tc.base, tc.prefix, lower, tc.lower)
		}
		if upper != tc.upper {
			t.Fatalf("outputNames(%q, %q) upper is %q; want %q",
				tc.base, tc.prefix, upper, tc.upper)
		}
	}
}

func TestParseOddByte(t *testing.T) {
	tests := []struct {
		s      string
		action wsplit.OddByteAction
	}{
		{"error", wsplit.OddByteError},
		{"skip", wsplit.OddByteSkip},
		{"lower", wsplit.OddByteLower},
		{"upper", wsplit.OddByteUpper},
	}
	for _, tc := range tests {
		a, err := parseOddByte(tc.s)
		if err != nil {
			t.Fatalf("parseOddByte(%q) error %s", tc.s, err)
		}
		if a != tc.action {
			t.Fatalf("parseOddByte(%q) is %v; want %v", tc.s, a,
				tc.action)
		}
	}
	if _, err := parseOddByte("discard"); err == nil {
		t.Fatalf("parseOddByte(%q) returned no error", "discard")
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rom.bin")
	data := []byte{0x12, 0x34, 0xab, 0xcd, 0x7f}
	if err := os.WriteFile(input, data, 0666); err != nil {
		t.Fatalf("os.WriteFile error %s", err)
	}
	outDir := t.TempDir()
	opts := &options{
		quiet:  true,
		output: outDir,
		cfg:    wsplit.Config{OddByte: wsplit.OddByteUpper},
	}
	if err := processFile(input, opts); err != nil {
		t.Fatalf("processFile error %s", err)
	}
	lower, err := os.ReadFile(filepath.Join(outDir, "rom"+lowerSuffix))
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	upper, err := os.ReadFile(filepath.Join(outDir, "rom"+upperSuffix))
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	if !bytes.Equal(lower, []byte{0x34, 0xcd}) {
		t.Fatalf("lower file contains %x; want %x", lower,
			[]byte{0x34, 0xcd})
	}
	if !bytes.Equal(upper, []byte{0x12, 0xab, 0x7f}) {
		t.Fatalf("upper file contains %x; want %x", upper,
			[]byte{0x12, 0xab, 0x7f})
	}
}

// TestProcessFileExisting verifies that existing output files are
// refused without --force when stdin is not a terminal.
func TestProcessFileExisting(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rom.bin")
	if err := os.WriteFile(input, []byte{1, 2}, 0666); err != nil {
		t.Fatalf("os.WriteFile error %s", err)
	}
	outDir := t.TempDir()
	existing := filepath.Join(outDir, "rom"+lowerSuffix)
	if err := os.WriteFile(existing, nil, 0666); err != nil {
		t.Fatalf("os.WriteFile error %s", err)
	}
	opts := &options{quiet: true, output: outDir}
	if err := processFile(input, opts); err == nil {
		t.Fatalf("processFile overwrote existing output")
	}
	opts.force = true
	if err := processFile(input, opts); err != nil {
		t.Fatalf("processFile with force error %s", err)
	}
	lower, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	if !bytes.Equal(lower, []byte{2}) {
		t.Fatalf("lower file contains %x; want %x", lower, []byte{2})
	}
}
