// Command transcript prints a session transcript recorded with the client's
// --record flag.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/omochice/socket-draughts/internal/transcript"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := pflag.NewFlagSet("transcript", pflag.ContinueOnError)
	relative := fs.BoolP("relative", "r", false, "Print times relative to the first entry")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: transcript [flags] <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open transcript: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := dump(transcript.NewReader(f), out, *relative); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read transcript: %v\n", err)
		return 1
	}
	return 0
}

func dump(r *transcript.Reader, out io.Writer, relative bool) error {
	var first *transcript.Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if relative {
			if first == nil {
				first = &e
			}
			fmt.Fprintf(out, "%10s %s %s\n", e.Time.Sub(first.Time), e.Direction, e.Line)
			continue
		}
		fmt.Fprintf(out, "%s %s %s\n", e.Time.Format("2006-01-02 15:04:05.000"), e.Direction, e.Line)
	}
}
