package catalog

import (
	"strings"

	"skycache/pkg/columnar"
)

// Spec identifies one VizieR catalog, e.g. "B/vsx/vsx"
type Spec string

// DefaultCatalogs is used when no identifier is configured
var DefaultCatalogs = []Spec{"B/vsx/vsx"}

// CacheFileName maps an identifier to its cache file name. Path separators
// become underscores: "B/vsx/vsx" is cached as "B_vsx_vsx.parquet".
func CacheFileName(id Spec) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(string(id))
	return name + columnar.Extension
}

// Specs converts plain strings into identifiers, dropping blanks
func Specs(ids []string) []Spec {
	specs := make([]Spec, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			specs = append(specs, Spec(id))
		}
	}
	return specs
}
