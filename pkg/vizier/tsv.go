package vizier

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"skycache/pkg/table"
)

// tsvNulls are the cell values VizieR uses for missing data
var tsvNulls = table.NewNullSet([]string{"", "NaN"})

// ParseTSV splits an ASU-TSV document into tables. Each table is a header
// line, a units line, a dashes line and data rows; tables are separated by
// blank lines and "#" comment lines. Cells are trimmed and column types are
// inferred.
func ParseTSV(body []byte) ([]*table.Table, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var tables []*table.Table
	var header []string
	var rows [][]string
	state := 0 // 0 between tables, 1 expect units, 2 expect dashes, 3 rows

	flush := func() error {
		if header == nil {
			return nil
		}
		t, err := table.FromStrings(header, rows, tsvNulls)
		if err != nil {
			return err
		}
		tables = append(tables, t)
		header, rows, state = nil, nil, 0
		return nil
	}

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(text, "#") {
			if isQueryError(text) {
				return nil, fmt.Errorf("query failed: %s", strings.TrimSpace(strings.TrimPrefix(text, "#")))
			}
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		// a units line may be nothing but tabs and padding
		if strings.TrimSpace(text) == "" && state != 1 {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		cells := splitCells(text)
		switch state {
		case 0:
			header = cells
			state = 1
		case 1:
			state = 2
		case 2:
			if !strings.HasPrefix(strings.TrimSpace(text), "-") {
				return nil, fmt.Errorf("line %d: expected dashes separator after units line", line)
			}
			state = 3
		default:
			if len(cells) < len(header) {
				cells = append(cells, make([]string, len(header)-len(cells))...)
			}
			if len(cells) > len(header) {
				return nil, fmt.Errorf("line %d: %d cells for %d columns", line, len(cells), len(header))
			}
			rows = append(rows, cells)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tables, nil
}

func splitCells(line string) []string {
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isQueryError(comment string) bool {
	c := strings.ToUpper(comment)
	return strings.HasPrefix(c, "#INFO") && strings.Contains(c, "QUERY_STATUS=ERROR")
}
