package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skycache/pkg/httpclient"
	"skycache/pkg/logger"
	"skycache/pkg/report"
	"skycache/pkg/storage"
)

const listingPage = `<html><body><h1>Index of /gaia/</h1>
<a href="../">Parent Directory</a>
<a href="GaiaSource_000-001.csv.gz">GaiaSource_000-001.csv.gz</a>
<a href="GaiaSource_001-002.csv.gz#top">GaiaSource_001-002.csv.gz</a>
<a href="GaiaSource_000-001.csv.gz">duplicate</a>
<a href="_MD5SUM.txt">_MD5SUM.txt</a>
<a href="broken.csv.gz">broken.csv.gz</a>
<a href="/archive/GaiaSource%20old.csv.gz">old</a>
</body></html>`

func newServer(t *testing.T, fileHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gaia/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gaia/":
			w.Write([]byte(listingPage))
		case "/gaia/broken.csv.gz":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			atomic.AddInt32(fileHits, 1)
			w.Write([]byte("payload of " + r.URL.Path))
		}
	})
	mux.HandleFunc("/archive/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(fileHits, 1)
		w.Write([]byte("archived"))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newDownloader(srv *httptest.Server, log logger.Logger) *Downloader {
	hc := httpclient.NewClient(srv.Client(), httpclient.Options{Logger: log})
	return New(hc, nil, Options{}, log)
}

func TestParseListing(t *testing.T) {
	listing, err := ParseListing([]byte(listingPage), "https://cdn.example.org/gaia/", ".csv.gz")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://cdn.example.org/gaia/GaiaSource_000-001.csv.gz",
		"https://cdn.example.org/gaia/GaiaSource_001-002.csv.gz",
		"https://cdn.example.org/gaia/broken.csv.gz",
		"https://cdn.example.org/archive/GaiaSource%20old.csv.gz",
	}, listing.Strings())
	assert.Equal(t, "GaiaSource old.csv.gz", FileName(listing[3]))
}

func TestParseListingInvalidBase(t *testing.T) {
	_, err := ParseListing([]byte(listingPage), "not a url", ".csv.gz")
	assert.Error(t, err)
}

func TestDownloadContinuesPastFailures(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dest := filepath.Join(t.TempDir(), "raw")
	tl := logger.NewTestLogger()

	dir, rep, err := newDownloader(srv, tl).Download(context.Background(), srv.URL+"/gaia/", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)

	assert.Equal(t, 3, rep.Counts.Success)
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.Equal(t, "broken.csv.gz", rep.ByStatus(report.StatusFailed)[0].Item)

	data, err := os.ReadFile(filepath.Join(dest, "GaiaSource_000-001.csv.gz"))
	require.NoError(t, err)
	assert.Equal(t, "payload of /gaia/GaiaSource_000-001.csv.gz", string(data))
	assert.FileExists(t, filepath.Join(dest, "GaiaSource old.csv.gz"))
	assert.NoFileExists(t, filepath.Join(dest, "broken.csv.gz"))
	assert.NoFileExists(t, filepath.Join(dest, "broken.csv.gz"+storage.PartSuffix))
	assert.True(t, tl.HasMessage("Failed to download file"))
}

func TestDownloadSkipsExistingFiles(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "GaiaSource_000-001.csv.gz"), []byte("local"), 0644))

	_, rep, err := newDownloader(srv, nil).Download(context.Background(), srv.URL+"/gaia/", dest)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	require.Len(t, rep.ByStatus(report.StatusSkipped), 1)
	assert.Equal(t, report.ReasonAlreadyExists, rep.ByStatus(report.StatusSkipped)[0].Reason)

	data, err := os.ReadFile(filepath.Join(dest, "GaiaSource_000-001.csv.gz"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, again, err := newDownloader(srv, nil).Download(context.Background(), srv.URL+"/gaia/", dest)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, 3, again.Counts.Skipped)
}

func TestDownloadListingFailureIsFatal(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	dest := filepath.Join(t.TempDir(), "raw")

	_, rep, err := newDownloader(srv, nil).Download(context.Background(), srv.URL+"/missing/", dest)
	require.Error(t, err)
	assert.Empty(t, rep.Outcomes)
	assert.NoDirExists(t, dest)
}

func TestDownloadStopsOnCancel(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	d := newDownloader(srv, nil)

	listing, err := d.List(context.Background(), srv.URL+"/gaia/")
	require.NoError(t, err)
	require.Len(t, listing, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = d.Download(ctx, srv.URL+"/gaia/", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&hits))
}
