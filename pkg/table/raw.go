package table

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ReadOptions controls how raw delimited files are parsed
type ReadOptions struct {
	Delimiter     rune
	CommentPrefix string
	NullValues    []string
}

// DefaultReadOptions reads comma-separated files with '#' comments
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Delimiter:     ',',
		CommentPrefix: "#",
		NullValues:    DefaultNullValues,
	}
}

// ReadGzipFile reads a gzip-compressed delimited file into a table
func ReadGzipFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	defer gz.Close()

	t, err := ReadDelimited(gz, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// ReadDelimited parses uncompressed delimited text. Leading comment lines are
// skipped; an ECSV comment block supplies column types, otherwise types are
// inferred from the values.
func ReadDelimited(r io.Reader, opts ReadOptions) (*Table, error) {
	br := bufio.NewReader(r)

	comments, err := readCommentBlock(br, opts.CommentPrefix)
	if err != nil {
		return nil, err
	}

	delimiter := opts.Delimiter
	var header *ecsvHeader
	if isECSV(comments) {
		if header, err = parseECSVHeader(comments); err != nil {
			return nil, err
		}
		if header.Delimiter != "" {
			d, size := utf8.DecodeRuneInString(header.Delimiter)
			if size != len(header.Delimiter) {
				return nil, fmt.Errorf("unsupported ECSV delimiter %q", header.Delimiter)
			}
			delimiter = d
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no header row")
	}

	names, rows := records[0], records[1:]
	nulls := NewNullSet(opts.NullValues)
	if header == nil {
		return FromStrings(names, rows, nulls)
	}
	schema, err := header.schemaFor(names)
	if err != nil {
		return nil, err
	}
	return FromStringsWithSchema(schema, rows, nulls)
}

// readCommentBlock consumes leading lines that start with prefix and returns
// them with the prefix and one following space removed.
func readCommentBlock(br *bufio.Reader, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, nil
	}
	var lines []string
	for {
		peek, err := br.Peek(len(prefix))
		if err != nil || string(peek) != prefix {
			return lines, nil
		}
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		line = strings.TrimPrefix(line, prefix)
		line = strings.TrimPrefix(line, " ")
		lines = append(lines, line)
		if err == io.EOF {
			return lines, nil
		}
	}
}
