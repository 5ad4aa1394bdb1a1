package lexsort

import (
	"bufio"
	"io"
)

// inputBufSize is the buffered-reader size used when scanning the
// primary input file.
const inputBufSize = 1 << 20

var utf8BOM = [3]byte{0xEF, 0xBB, 0xBF}

// stripBOM discards a leading UTF-8 BOM if present.
func stripBOM(br *bufio.Reader) error {
	peek, err := br.Peek(3)
	if err != nil {
		// Fewer than 3 bytes total (tiny or empty file): nothing to strip.
		return nil
	}
	if peek[0] == utf8BOM[0] && peek[1] == utf8BOM[1] && peek[2] == utf8BOM[2] {
		_, err := br.Discard(3)
		return err
	}
	return nil
}

// readLine reads one line, stripping its LF or CRLF terminator. n is
// the number of raw bytes consumed from br, including the terminator,
// used by the caller to track input position. Returns io.EOF once no
// more data is available.
func readLine(br *bufio.Reader) (line []byte, n int, err error) {
	data, err := br.ReadBytes('\n')
	n = len(data)
	if err != nil && err != io.EOF {
		return nil, n, err
	}
	if err == io.EOF && len(data) == 0 {
		return nil, 0, io.EOF
	}

	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}
	if len(data) > 0 && data[len(data)-1] == '\r' {
		data = data[:len(data)-1]
	}
	return data, n, nil
}
