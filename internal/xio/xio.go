// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xio provides tools to handle the layered output writers of the
// wsplit command. It contains the [WriteCloserStack] type supporting
// combining multiple WriteClosers as single [io.WriteCloser] and the
// [CountingWriter] used for reporting output sizes.
package xio

import (
	"bufio"
	"errors"
	"io"
)

// WriteCloserStack allows to support multiple WriteClosers to be handled
// as single WriteCloser. The wsplit command stacks the output file, the
// buffered writer and the byte counter for each of its two outputs.
type WriteCloserStack struct {
	Stack []io.WriteCloser
}

// Write writes data to the top WriteCloser in the stack. If the stack is
// empty Write will always succeed.
func (w *WriteCloserStack) Write(p []byte) (n int, err error) {
	k := len(w.Stack)
	if k == 0 {
		return len(p), nil
	}
	return w.Stack[k-1].Write(p)
}

// Close closes all writers on the stack and combines the errors. It will
// clear the stack. Closing an already closed stack succeeds, which keeps
// deferred closes on the error paths harmless.
func (w *WriteCloserStack) Close() error {
	var errs []error
	for k := len(w.Stack) - 1; k >= 0; k-- {
		err := w.Stack[k].Close()
		errs = append(errs, err)
	}
	w.Stack = nil
	return errors.Join(errs...)
}

// Push adds a new WriteCloser to the top of the stack. It panics if the
// WriteCloser is nil.
func (w *WriteCloserStack) Push(wc io.WriteCloser) {
	if wc == nil {
		panic("cannot push nil WriteCloser onto stack")
	}
	w.Stack = append(w.Stack, wc)
}

// flushCloser makes a bufio.Writer usable on a WriteCloserStack by
// mapping Close to Flush.
type flushCloser struct {
	*bufio.Writer
}

func (f flushCloser) Close() error { return f.Flush() }

// FlushCloser converts the buffered writer into a WriteCloser whose
// Close flushes the buffer.
func FlushCloser(bw *bufio.Writer) io.WriteCloser { return flushCloser{bw} }

// CountingWriter counts the bytes written to the wrapped writer.
type CountingWriter struct {
	W io.Writer
	N int64
}

// Write writes p to the wrapped writer and adds the number of written
// bytes to the counter.
func (w *CountingWriter) Write(p []byte) (n int, err error) {
	n, err = w.W.Write(p)
	w.N += int64(n)
	return n, err
}

// Close closes the wrapped writer if it supports it.
func (w *CountingWriter) Close() error {
	if c, ok := w.W.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
