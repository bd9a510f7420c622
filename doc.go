// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wsplit deinterleaves a stream of 16-bit words into two byte
// streams, one for the high-order and one for the low-order byte of
// each word. The typical use case is burning firmware or re-packing
// ROM images for systems that store the two halves of their 16-bit
// data bus in separate memory chips.
//
// The Split function consumes any io.Reader and writes to any pair of
// io.Writers; it doesn't care whether the bytes come from a plain file
// or an archive entry and where they end up. The wsplit command in
// cmd/wsplit provides the file handling around it.
package wsplit
