package table

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const ecsvMarker = "%ECSV"

// ecsvHeader is the subset of an ECSV YAML header needed to type columns
type ecsvHeader struct {
	Delimiter string
	Columns   []ecsvColumn
}

type ecsvColumn struct {
	Name     string `yaml:"name"`
	Datatype string `yaml:"datatype"`
}

// isECSV reports whether a comment block starts with the ECSV marker.
// lines have the comment prefix already removed.
func isECSV(lines []string) bool {
	return len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), ecsvMarker)
}

// parseECSVHeader decodes the YAML document that follows the "---" line.
// Only delimiter and datatype are decoded; meta may carry tags such as
// !!omap that are not needed here.
func parseECSVHeader(lines []string) (*ecsvHeader, error) {
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("ECSV header has no YAML document")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines[start:], "\n")), &doc); err != nil {
		return nil, fmt.Errorf("invalid ECSV header: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("ECSV header is not a mapping")
	}

	header := &ecsvHeader{}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "delimiter":
			header.Delimiter = value.Value
		case "datatype":
			if err := value.Decode(&header.Columns); err != nil {
				return nil, fmt.Errorf("invalid ECSV datatype list: %w", err)
			}
		}
	}
	if len(header.Columns) == 0 {
		return nil, fmt.Errorf("ECSV header declares no columns")
	}
	return header, nil
}

// schemaFor maps the declared datatypes onto the CSV header
func (h *ecsvHeader) schemaFor(names []string) (Schema, error) {
	if len(names) != len(h.Columns) {
		return nil, fmt.Errorf("ECSV header declares %d columns, data has %d", len(h.Columns), len(names))
	}
	schema := make(Schema, len(names))
	for i, name := range names {
		if h.Columns[i].Name != name {
			return nil, fmt.Errorf("ECSV column %d is %q, data header has %q", i, h.Columns[i].Name, name)
		}
		schema[i] = Column{Name: name, Type: ecsvType(h.Columns[i].Datatype)}
	}
	return schema, nil
}

func ecsvType(datatype string) Type {
	switch datatype {
	case "bool":
		return Bool
	case "int8", "int16", "int32", "int64", "uint8", "uint16", "uint32":
		return Int64
	case "float16", "float32", "float64", "float128":
		return Float64
	default:
		// uint64 may overflow int64; strings, complex and object columns stay text
		return String
	}
}
