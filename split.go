// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsplit

import (
	"errors"
	"fmt"
	"io"
)

// ByteOrder selects which byte of a 16-bit word goes to which output
// stream.
type ByteOrder int

// Supported byte orders. BigEndian is the default and matches the memory
// layout of 16-bit-bus microprocessors like the Motorola 68000.
const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// String represents the byte order in the way it is reported to users.
func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big-endian"
	case LittleEndian:
		return "little-endian"
	}
	return fmt.Sprintf("ByteOrder(%d)", int(o))
}

// OddByteAction determines the disposition of the trailing byte if the
// total input length is odd.
type OddByteAction int

// Actions for the trailing byte of an odd-length input. OddByteError is
// the default and makes Split return an *OddLengthError.
const (
	OddByteError OddByteAction = iota
	OddByteSkip
	OddByteLower
	OddByteUpper
)

// String represents the action as the keyword used by the wsplit command
// line tool.
func (a OddByteAction) String() string {
	switch a {
	case OddByteError:
		return "error"
	case OddByteSkip:
		return "skip"
	case OddByteLower:
		return "lower"
	case OddByteUpper:
		return "upper"
	}
	return fmt.Sprintf("OddByteAction(%d)", int(a))
}

// defaultBufSize defines the default read chunk size as 512 kbyte.
const defaultBufSize = 512 << 10

// Config describes the parameters for splitting a word stream.
type Config struct {
	// byte order of the 16-bit words (default: BigEndian)
	ByteOrder ByteOrder

	// disposition of the trailing byte of an odd-length input
	// (default: OddByteError)
	OddByte OddByteAction

	// read chunk size in bytes (default: 512 kbyte); the chunk size
	// influences only the number of read calls, never the output
	BufSize int
}

// ApplyDefaults replaces zero values in the configuration by default
// values.
func (c *Config) ApplyDefaults() {
	if c.BufSize == 0 {
		c.BufSize = defaultBufSize
	}
}

// Verify checks the configuration for errors. Zero values will be
// replaced by default values.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("wsplit: configuration is nil")
	}
	c.ApplyDefaults()
	if c.BufSize < 1 {
		return errors.New("wsplit: BufSize out of range")
	}
	switch c.ByteOrder {
	case BigEndian, LittleEndian:
	default:
		return fmt.Errorf("wsplit: byte order %d not supported",
			int(c.ByteOrder))
	}
	switch c.OddByte {
	case OddByteError, OddByteSkip, OddByteLower, OddByteUpper:
	default:
		return fmt.Errorf("wsplit: odd byte action %d not supported",
			int(c.OddByte))
	}
	return nil
}

// Result reports the outcome of a split.
type Result struct {
	// number of complete 16-bit words written to the outputs
	WordPairs int64

	// OddByte is the value of the trailing byte of an odd-length
	// input. It is only valid if HasOddByte or OddByteSkipped is
	// true.
	OddByte byte

	// HasOddByte reports that the trailing byte has been appended to
	// one of the outputs.
	HasOddByte bool

	// OddByteSkipped reports that the trailing byte has been
	// discarded.
	OddByteSkipped bool
}

// OddLengthError reports an input with an odd number of bytes under the
// OddByteError action. At the time the error is returned all complete
// word pairs have already been written to the outputs; there is no
// rollback. The trailing byte itself is not written anywhere.
type OddLengthError struct {
	// value of the trailing byte
	Byte byte
	// complete word pairs written before the error
	WordPairs int64
}

// Error provides the error message for the odd-length condition.
func (e *OddLengthError) Error() string {
	return fmt.Sprintf(
		"wsplit: input has an odd number of bytes; trailing byte 0x%02x",
		e.Byte)
}

// Split reads a stream of 16-bit words from r and appends the two bytes
// of every word to the lower and upper writers according to the byte
// order of the configuration. For BigEndian the first byte of a word is
// the high-order byte and goes to upper; for LittleEndian it goes to
// lower. The relative order of the bytes within each output equals
// their order in the input.
//
// The input is read in chunks of cfg.BufSize bytes. A chunk with an odd
// length leaves one byte behind, which is carried over and paired with
// the following chunk, so the output is independent of the chunk size.
// If the total input length is odd the single leftover byte is handled
// according to cfg.OddByte after all complete pairs have been written.
//
// Errors from r or the writers are returned unchanged and terminate the
// split immediately. Data written before the error remains written.
func Split(lower, upper io.Writer, r io.Reader, cfg Config) (result Result, err error) {
	if err = cfg.Verify(); err != nil {
		return Result{}, err
	}

	var (
		// one extra slot in front for the carried byte
		buf = make([]byte, 1+cfg.BufSize)
		a   = make([]byte, 0, cfg.BufSize/2+1)
		b   = make([]byte, 0, cfg.BufSize/2+1)
		rem = 0
	)
	for {
		n, rerr := r.Read(buf[1 : 1+cfg.BufSize])
		chunk := buf[1-rem : 1+n]
		rem = 0
		if len(chunk) >= 2 {
			paired := chunk[:len(chunk)&^1]
			a, b = a[:0], b[:0]
			for i := 0; i < len(paired); i += 2 {
				a = append(a, paired[i])
				b = append(b, paired[i+1])
			}
			// big-endian: even offsets carry the high-order bytes
			lo, up := b, a
			if cfg.ByteOrder == LittleEndian {
				lo, up = a, b
			}
			if _, err = lower.Write(lo); err != nil {
				return result, err
			}
			if _, err = upper.Write(up); err != nil {
				return result, err
			}
			result.WordPairs += int64(len(paired) >> 1)
			if len(chunk) > len(paired) {
				buf[0] = chunk[len(paired)]
				rem = 1
			}
		} else if len(chunk) == 1 {
			buf[0] = chunk[0]
			rem = 1
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return result, rerr
		}
	}

	if rem == 0 {
		return result, nil
	}
	switch cfg.OddByte {
	case OddByteError:
		return result, &OddLengthError{
			Byte:      buf[0],
			WordPairs: result.WordPairs,
		}
	case OddByteSkip:
		result.OddByte = buf[0]
		result.OddByteSkipped = true
	case OddByteLower:
		if _, err = lower.Write(buf[:1]); err != nil {
			return result, err
		}
		result.OddByte = buf[0]
		result.HasOddByte = true
	case OddByteUpper:
		if _, err = upper.Write(buf[:1]); err != nil {
			return result, err
		}
		result.OddByte = buf[0]
		result.HasOddByte = true
	}
	return result, nil
}
