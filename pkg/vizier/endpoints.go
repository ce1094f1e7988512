package vizier

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the CDS VizieR mirror in Strasbourg
	DefaultBaseURL = "https://vizier.cds.unistra.fr"

	// ASUTSVEndpoint returns query results as tab-separated values
	ASUTSVEndpoint = "/viz-bin/asu-tsv"

	// Unlimited asks for every row of the catalog
	Unlimited = -1
)

// QueryURL builds an ASU-TSV query for every column of source with at
// most maxRows rows. Coordinates are requested in decimal degrees so they
// parse as numbers.
func QueryURL(baseURL, source string, maxRows int) string {
	limit := "unlimited"
	if maxRows >= 0 {
		limit = strconv.Itoa(maxRows)
	}

	// -out.all is a bare flag, so the query is assembled by hand
	var q strings.Builder
	q.WriteString("-source=")
	q.WriteString(url.QueryEscape(source))
	q.WriteString("&-out.all")
	q.WriteString("&-out.max=")
	q.WriteString(limit)
	q.WriteString("&-oc.form=dec")

	return strings.TrimSuffix(baseURL, "/") + ASUTSVEndpoint + "?" + q.String()
}
