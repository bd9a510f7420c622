// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source opens the input byte stream for the wsplit command. It
// materializes plain files, compressed files and the first entry of
// archive containers behind the same sequential reader, so the splitter
// never branches on the origin of its bytes.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Options control how a source is opened.
type Options struct {
	// Warn is called for conditions worth reporting to the user,
	// like additional archive entries that are ignored. A nil Warn
	// discards the messages.
	Warn func(format string, v ...interface{})
}

func (o *Options) warn(format string, v ...interface{}) {
	if o != nil && o.Warn != nil {
		o.Warn(format, v...)
	}
}

// Source is a sequential byte stream together with the metadata the
// wsplit command needs to derive output names and a read buffer size.
type Source struct {
	io.Reader

	// Name is the base name output files are derived from. For an
	// archive this is the name of the extracted entry, not the name
	// of the archive.
	Name string

	// Size is the total number of bytes the reader will deliver, or
	// -1 if it is not knowable without reading the stream.
	Size int64

	closers []io.Closer
}

// Close closes all resources of the source in reverse opening order and
// combines the errors.
func (s *Source) Close() error {
	var errs []error
	for k := len(s.closers) - 1; k >= 0; k-- {
		errs = append(errs, s.closers[k].Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// errNoRegular indicates that a file is not regular.
var errNoRegular = errors.New("no regular file")

// openFile opens the path and verifies that it refers to a regular
// file.
func openFile(path string) (f *os.File, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, &os.PathError{Op: "open", Path: path,
			Err: errNoRegular}
	}
	return os.Open(path)
}

// Open opens the byte source for the given path. Archive containers
// (.zip, .7z, .rar) deliver their first regular entry; compressed files
// (.gz, .xz, .lzma, .zst) deliver the decompressed stream; everything
// else is read as a plain binary file.
func Open(path string, opts *Options) (s *Source, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return openZip(path, opts)
	case ".7z":
		return open7z(path, opts)
	case ".rar":
		return openRar(path, opts)
	case ".gz", ".xz", ".zst":
		return openCompressed(path)
	case ".lzma":
		return openLZMA(path)
	}
	return openPlain(path)
}

// openPlain opens a plain binary file.
func openPlain(path string) (s *Source, err error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Source{
		Reader:  bufio.NewReader(f),
		Name:    filepath.Base(path),
		Size:    fi.Size(),
		closers: []io.Closer{f},
	}, nil
}

// openZip opens the first regular entry of a zip archive.
func openZip(path string, opts *Options) (s *Source, err error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	var files []*zip.File
	for _, f := range rc.File {
		if f.Mode().IsRegular() {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		rc.Close()
		return nil, fmt.Errorf("source: no files in archive %s", path)
	}
	warnExtraEntries(opts, path, entryNames(files,
		func(f *zip.File) string { return f.Name }))
	e, err := files[0].Open()
	if err != nil {
		rc.Close()
		return nil, err
	}
	return &Source{
		Reader:  e,
		Name:    filepath.Base(files[0].Name),
		Size:    int64(files[0].UncompressedSize64),
		closers: []io.Closer{rc, e},
	}, nil
}

// open7z opens the first regular entry of a 7z archive.
func open7z(path string, opts *Options) (s *Source, err error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	var files []*sevenzip.File
	for _, f := range rc.File {
		if f.FileInfo().Mode().IsRegular() {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		rc.Close()
		return nil, fmt.Errorf("source: no files in archive %s", path)
	}
	warnExtraEntries(opts, path, entryNames(files,
		func(f *sevenzip.File) string { return f.Name }))
	e, err := files[0].Open()
	if err != nil {
		rc.Close()
		return nil, err
	}
	return &Source{
		Reader:  e,
		Name:    filepath.Base(files[0].Name),
		Size:    files[0].FileInfo().Size(),
		closers: []io.Closer{rc, e},
	}, nil
}

// openRar opens the first regular entry of a rar archive. The rar
// format only supports sequential access, so the remaining entry names
// for the warning are not collected.
func openRar(path string, opts *Options) (s *Source, err error) {
	rc, err := rardecode.OpenReader(path, "")
	if err != nil {
		return nil, err
	}
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			rc.Close()
			return nil, fmt.Errorf("source: no files in archive %s",
				path)
		}
		if err != nil {
			rc.Close()
			return nil, err
		}
		if hdr.IsDir {
			continue
		}
		size := hdr.UnPackedSize
		if hdr.UnKnownSize {
			size = -1
		}
		return &Source{
			Reader:  rc,
			Name:    filepath.Base(hdr.Name),
			Size:    size,
			closers: []io.Closer{rc},
		}, nil
	}
}

// magic numbers of the supported single-stream compression formats
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// openCompressed opens a gzip, xz or zstd compressed file. The format
// is detected from the header magic, so a wrong extension doesn't
// matter. The decompressed size is unknown in all three formats.
func openCompressed(path string) (s *Source, err error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	p, err := br.Peek(len(magicXZ))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, err
	}
	name := stemName(filepath.Base(path))
	var r io.Reader
	closers := []io.Closer{f}
	switch {
	case bytes.HasPrefix(p, magicGzip):
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		if gz.Name != "" {
			name = filepath.Base(gz.Name)
		}
		r = gz
		closers = append(closers, gz)
	case bytes.HasPrefix(p, magicXZ):
		if r, err = xz.NewReader(br); err != nil {
			f.Close()
			return nil, err
		}
	case bytes.HasPrefix(p, magicZstd):
		d, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc := d.IOReadCloser()
		r = rc
		closers = append(closers, rc)
	default:
		f.Close()
		return nil, fmt.Errorf(
			"source: %s is not a gzip, xz or zstd file", path)
	}
	return &Source{Reader: r, Name: name, Size: -1, closers: closers}, nil
}

// openLZMA opens a classic lzma compressed file. The format has no
// reliable header magic, so the extension decides.
func openLZMA(path string) (s *Source, err error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	r, err := lzma.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Source{
		Reader:  r,
		Name:    stemName(filepath.Base(path)),
		Size:    -1,
		closers: []io.Closer{f},
	}, nil
}

// stemName removes the compression extension from the file name. A name
// consisting only of the extension is kept as is.
func stemName(name string) string {
	ext := filepath.Ext(name)
	if ext != "" && ext != name {
		return name[:len(name)-len(ext)]
	}
	return name
}

// entryNames collects the names of archive entries.
func entryNames[T any](files []T, name func(T) string) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = name(f)
	}
	return names
}

// warnExtraEntries reports archives with more than one file. Only the
// first file will be processed.
func warnExtraEntries(opts *Options, path string, names []string) {
	if len(names) < 2 {
		return
	}
	opts.warn("found %d files in archive %s:", len(names), path)
	for _, n := range names {
		opts.warn("  - %s", n)
	}
	opts.warn("processing only the first file: %s", names[0])
}
