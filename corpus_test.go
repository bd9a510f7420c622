// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsplit_test

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/ulikunitz/wsplit"
	"github.com/ulikunitz/zdata"
)

type corpusFile struct {
	Name string
	Data []byte
}

// corpusFiles reads all files of a test corpus into memory.
func corpusFiles(corpus fs.FS) (files []corpusFile, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, corpusFile{Name: path, Data: data})
			return nil
		})
	return files, err
}

// TestSilesia splits the files of the Silesia corpus and reassembles the
// input from the two outputs.
func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping corpus test in short mode")
	}
	files, err := corpusFiles(zdata.Silesia)
	if err != nil {
		t.Fatalf("corpusFiles(zdata.Silesia) error %s", err)
	}
	for _, f := range files {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			var lower, upper bytes.Buffer
			result, err := wsplit.Split(&lower, &upper,
				bytes.NewReader(f.Data),
				wsplit.Config{OddByte: wsplit.OddByteSkip})
			if err != nil {
				t.Fatalf("%s: wsplit.Split error %s", f.Name,
					err)
			}
			n := len(f.Data)
			if result.WordPairs != int64(n/2) {
				t.Fatalf("%s: WordPairs is %d; want %d",
					f.Name, result.WordPairs, n/2)
			}
			lo, up := lower.Bytes(), upper.Bytes()
			buf := make([]byte, 0, n&^1)
			for i := 0; i < n/2; i++ {
				buf = append(buf, up[i], lo[i])
			}
			if !bytes.Equal(buf, f.Data[:n&^1]) {
				t.Errorf("%s: reassembled data differs", f.Name)
			}
		})
	}
}
