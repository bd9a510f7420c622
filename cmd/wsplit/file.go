// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/wsplit"
	"github.com/ulikunitz/wsplit/internal/source"
	"github.com/ulikunitz/wsplit/internal/xio"
	"golang.org/x/term"
)

// suffixes of the two output files
const (
	lowerSuffix = ".lower.bin"
	upperSuffix = ".upper.bin"
)

// defaultBufSize is the read buffer size if the input size is unknown.
const defaultBufSize = 512 << 10

// options collects the flags of the wsplit command.
type options struct {
	force  bool
	quiet  bool
	output string
	cfg    wsplit.Config
}

// warn logs a warning unless quiet has been requested.
func (o *options) warn(format string, v ...interface{}) {
	if !o.quiet {
		log.Printf(format, v...)
	}
}

// errCancelled indicates that the user declined to overwrite the output
// files.
var errCancelled = errors.New("cancelled by user")

// stem removes the extension from a file name. A name without an
// extension is kept as is.
func stem(name string) string {
	ext := filepath.Ext(name)
	if ext != "" && ext != name {
		return name[:len(name)-len(ext)]
	}
	return name
}

// outputNames derives the paths of the lower and upper output files
// from the input base name and the --output argument. An empty prefix
// puts the files into the current directory under the input name; a
// prefix naming an existing directory puts them there; any other prefix
// is used as the path and name base of the output files.
func outputNames(baseName, prefix string) (lowerPath, upperPath string, err error) {
	var base string
	if prefix == "" {
		base = stem(baseName)
	} else if fi, err := os.Stat(prefix); err == nil && fi.IsDir() {
		base = filepath.Join(prefix, stem(baseName))
	} else {
		dir, name := filepath.Split(prefix)
		if name == "" {
			return "", "", fmt.Errorf(
				"output prefix %s has no name part", prefix)
		}
		base = filepath.Join(dir, stem(name))
	}
	return base + lowerSuffix, base + upperSuffix, nil
}

// checkOutputs verifies that the output files don't exist yet. With
// force existing files are silently overwritten. On an interactive
// terminal the user is asked; otherwise existing files are an error.
func checkOutputs(lowerPath, upperPath string, force bool) error {
	if force {
		return nil
	}
	var existing []string
	for _, path := range []string{lowerPath, upperPath} {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf(
			"output file(s) already exist: %s; use --force to overwrite",
			strings.Join(existing, ", "))
	}
	fmt.Fprintf(os.Stderr, "output file(s) already exist: %s\n",
		strings.Join(existing, ", "))
	fmt.Fprint(os.Stderr, "Overwrite? [Y/n] ")
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer != "" && answer[0] != 'y' && answer[0] != 'Y' {
		return errCancelled
	}
	return nil
}

// sink is one of the two output files with its layered writers.
type sink struct {
	path  string
	stack *xio.WriteCloserStack
	count *xio.CountingWriter
}

// newSink creates the output file and stacks the buffered writer and
// the byte counter on top of it.
func newSink(path string) (s *sink, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	s = &sink{path: path, stack: &xio.WriteCloserStack{}}
	s.stack.Push(f)
	bw := bufio.NewWriter(f)
	s.stack.Push(xio.FlushCloser(bw))
	s.count = &xio.CountingWriter{W: bw}
	s.stack.Push(s.count)
	return s, nil
}

// remove closes the sink and removes the partially written file. It is
// used on the error paths and by the signal handler.
func (s *sink) remove() {
	s.stack.Close()
	os.Remove(s.path)
}

// signalHandler establishes the signal handler for SIGINT and handles
// it in its own go routine. The partial output files are removed on
// interruption. The returned quit channel must be closed to terminate
// the signal handler go routine.
func signalHandler(sinks ...*sink) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
			return
		case <-sigch:
			for _, s := range sinks {
				s.remove()
			}
			os.Exit(130)
		}
	}()
	return quit
}

// userPathError represents a path error presentable to a user. In
// difference to os.PathError it removes the information of the
// operation returning the error.
type userPathError struct {
	Path string
	Err  error
}

// Error provides the error string for the path error.
func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// userError converts a path error into a generic error removing the
// operation information, which is not relevant for users of the wsplit
// program.
func userError(err error) error {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}

// report prints the summary for a successful split.
func report(lower, upper *sink, result wsplit.Result, cfg wsplit.Config) {
	fmt.Printf("file split successfully:\n")
	fmt.Printf("  lower bytes: %s (%d bytes)\n", lower.path, lower.count.N)
	fmt.Printf("  upper bytes: %s (%d bytes)\n", upper.path, upper.count.N)
	fmt.Printf("  complete word pairs: %d\n", result.WordPairs)
	if result.HasOddByte || result.OddByteSkipped {
		disposition := "skipped"
		if result.HasOddByte {
			disposition = "added to " + cfg.OddByte.String()
		}
		fmt.Printf("  odd byte (0x%02x): %s\n", result.OddByte,
			disposition)
	}
	order := cfg.ByteOrder.String()
	if cfg.ByteOrder == wsplit.BigEndian {
		order += " (Motorola 68000)"
	}
	fmt.Printf("  byte order: %s\n", order)
}

// processFile splits the file with the given path applying the provided
// options.
func processFile(path string, opts *options) (err error) {
	src, err := source.Open(path, &source.Options{Warn: opts.warn})
	if err != nil {
		return err
	}
	defer src.Close()
	if src.Size == 0 {
		opts.warn("file %s is empty", path)
	}

	lowerPath, upperPath, err := outputNames(src.Name, opts.output)
	if err != nil {
		return err
	}
	if err = checkOutputs(lowerPath, upperPath, opts.force); err != nil {
		return err
	}

	cfg := opts.cfg
	if cfg.BufSize == 0 && 0 < src.Size && src.Size < defaultBufSize {
		cfg.BufSize = int(src.Size)
	}

	lower, err := newSink(lowerPath)
	if err != nil {
		return err
	}
	upper, err := newSink(upperPath)
	if err != nil {
		lower.remove()
		return err
	}
	quit := signalHandler(lower, upper)

	result, err := wsplit.Split(lower.stack, upper.stack, src, cfg)
	// both sinks are flushed and closed on every exit path
	closeErr := errors.Join(lower.stack.Close(), upper.stack.Close())
	close(quit)
	if err != nil {
		var lenErr *wsplit.OddLengthError
		if errors.As(err, &lenErr) {
			// The word pairs written so far are kept; there is
			// no rollback of the output files.
			log.Printf("%s", err)
			log.Print("use --odd-byte to specify handling " +
				"(skip, lower or upper)")
			os.Exit(1)
		}
		lower.remove()
		upper.remove()
		return err
	}
	if closeErr != nil {
		return closeErr
	}
	if err = src.Close(); err != nil {
		return err
	}

	if result.WordPairs == 0 && !result.HasOddByte {
		opts.warn("no data was written; input may be empty or too small")
	}
	if result.OddByteSkipped {
		opts.warn("input has an odd number of bytes; "+
			"last byte 0x%02x skipped", result.OddByte)
	}
	if result.HasOddByte {
		opts.warn("input has an odd number of bytes; "+
			"last byte 0x%02x added to the %s file", result.OddByte,
			cfg.OddByte)
	}
	report(lower, upper, result, cfg)
	return nil
}
