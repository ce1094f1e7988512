package downloader

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is the ordered set of file URLs found on a directory page
type Listing []*url.URL

// ParseListing extracts the links of an HTML directory page whose path ends
// in suffix. Relative links are resolved against baseURL, fragments are
// dropped and duplicates keep their first position.
func ParseListing(page []byte, baseURL, suffix string) (Listing, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %s (must have scheme and host)", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	var listing Listing
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if !strings.HasSuffix(abs.Path, suffix) {
			return
		}

		key := abs.String()
		if seen[key] {
			return
		}
		seen[key] = true
		listing = append(listing, abs)
	})
	return listing, nil
}

// FileName is the local name for u: its last path segment, unescaped
func FileName(u *url.URL) string {
	return path.Base(u.Path)
}

// Strings returns the listing as URL strings
func (l Listing) Strings() []string {
	out := make([]string, len(l))
	for i, u := range l {
		out[i] = u.String()
	}
	return out
}
