package infra

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func pngServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	img := imaging.New(64, 64, color.NRGBA{R: 247, G: 147, B: 26, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIconDownloader_DownloadAndResize(t *testing.T) {
	calls := 0
	server := pngServer(t, &calls)

	d, err := NewIconDownloaderAt(t.TempDir(), 24)
	if err != nil {
		t.Fatalf("NewIconDownloaderAt failed: %v", err)
	}

	path, err := d.DownloadIcon(context.Background(), "bitcoin", server.URL+"/btc.png")
	if err != nil {
		t.Fatalf("DownloadIcon failed: %v", err)
	}
	if path != d.GetIconPath("bitcoin") {
		t.Errorf("path = %q, want %q", path, d.GetIconPath("bitcoin"))
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open saved icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 24 {
		t.Errorf("icon size = %dx%d, want 24x24", b.Dx(), b.Dy())
	}

	// Second call is a cache hit
	if _, err := d.DownloadIcon(context.Background(), "bitcoin", server.URL+"/btc.png"); err != nil {
		t.Fatalf("cached DownloadIcon failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 HTTP call, got %d", calls)
	}
}

func TestIconDownloader_Errors(t *testing.T) {
	calls := 0
	server := pngServer(t, &calls)

	d, err := NewIconDownloaderAt(t.TempDir(), 24)
	if err != nil {
		t.Fatalf("NewIconDownloaderAt failed: %v", err)
	}

	if _, err := d.DownloadIcon(context.Background(), "../../", server.URL+"/x.png"); err == nil {
		t.Error("expected error for id without safe characters")
	}
	if _, err := d.DownloadIcon(context.Background(), "bitcoin", ""); err == nil {
		t.Error("expected error for empty image url")
	}
	if _, err := d.DownloadIcon(context.Background(), "ghost", server.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := os.Stat(d.GetIconPath("ghost")); !os.IsNotExist(err) {
		t.Error("failed download should not leave a file")
	}
}

func TestSanitizeID(t *testing.T) {
	tests := map[string]string{
		"bitcoin":         "bitcoin",
		"wrapped-bitcoin": "wrapped-bitcoin",
		"../etc/passwd":   "etcpasswd",
		"usd-coin!":       "usd-coin",
		"":                "",
	}
	for in, want := range tests {
		if got := sanitizeID(in); got != want {
			t.Errorf("sanitizeID(%q) = %q, want %q", in, got, want)
		}
	}
}
