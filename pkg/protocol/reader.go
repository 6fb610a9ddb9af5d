package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineReader turns a byte stream into text lines, one blocking read at a time.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// NextLine returns the next line without its delimiter. A final line the peer
// did not terminate is returned before io.EOF. Any other read failure is
// returned wrapped; callers treat every error as the end of the stream.
func (lr *LineReader) NextLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil {
		if line != "" && errors.Is(err, io.EOF) {
			return strings.TrimSuffix(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read line: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
