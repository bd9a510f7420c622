// Copyright 2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wsplit splits a binary file of 16-bit words into an upper and
// a lower byte file, one per memory bank.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ogier/pflag"
	"github.com/ulikunitz/wsplit"
)

const usageStr = `Usage: wsplit [OPTION]... FILE
Split the 16-bit words of the binary FILE into an upper and a lower byte
file, one per memory bank. FILE may also be a .zip, .7z or .rar archive,
in which case the first entry is split, or a .gz, .xz, .lzma or .zst
compressed file.

  -h, --help           give this help
  -f, --force          overwrite existing output files without asking
  -o, --output=PREFIX  output prefix or existing directory (default:
                       input name in the current directory)
      --little-endian  low-order byte first (default: big-endian, as on
                       the Motorola 68000)
      --odd-byte=MODE  handling of the last byte of an odd-length input:
                       error (default), skip, lower or upper
  -b, --buffer-size=N  read buffer size in bytes
  -q, --quiet          suppress warnings
  -V, --version        display version string

Example: wsplit data.bin -> data.lower.bin and data.upper.bin

Report bugs using <https://github.com/ulikunitz/wsplit/issues>.
`

const version = "0.2.0"

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

// parseOddByte converts the --odd-byte argument into the action
// constant.
func parseOddByte(s string) (a wsplit.OddByteAction, err error) {
	switch s {
	case "error":
		return wsplit.OddByteError, nil
	case "skip":
		return wsplit.OddByteSkip, nil
	case "lower":
		return wsplit.OddByteLower, nil
	case "upper":
		return wsplit.OddByteUpper, nil
	}
	return 0, fmt.Errorf(
		"odd-byte mode %q not supported; use error, skip, lower or upper",
		s)
}

func main() {
	// setup logger
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	// initialize flags
	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.SetInterspersed(true)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		help         = pflag.BoolP("help", "h", false, "")
		force        = pflag.BoolP("force", "f", false, "")
		output       = pflag.StringP("output", "o", "", "")
		littleEndian = pflag.Bool("little-endian", false, "")
		oddByte      = pflag.String("odd-byte", "error", "")
		bufSize      = pflag.IntP("buffer-size", "b", 0, "")
		quiet        = pflag.BoolP("quiet", "q", false, "")
		printVersion = pflag.BoolP("version", "V", false, "")
	)
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if *printVersion {
		fmt.Printf("wsplit %s\n", version)
		os.Exit(0)
	}
	if pflag.NArg() != 1 {
		log.Fatal("need exactly one input file; for help, type wsplit -h")
	}
	action, err := parseOddByte(*oddByte)
	if err != nil {
		log.Fatal(err)
	}
	if *bufSize < 0 {
		log.Fatal("buffer size must be positive")
	}

	opts := &options{
		force:  *force,
		quiet:  *quiet,
		output: *output,
		cfg: wsplit.Config{
			OddByte: action,
			BufSize: *bufSize,
		},
	}
	if *littleEndian {
		opts.cfg.ByteOrder = wsplit.LittleEndian
	}

	if err = processFile(pflag.Arg(0), opts); err != nil {
		if err == errCancelled {
			log.Print("operation cancelled")
			os.Exit(0)
		}
		log.Fatal(userError(err))
	}
}
