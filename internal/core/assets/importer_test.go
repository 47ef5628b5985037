package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wixport/internal/ports/secondary"
)

// mockAssetRepo implements secondary.AssetRepository for testing.
type mockAssetRepo struct {
	bySource map[string]*secondary.AssetRecord
	byID     map[int64]*secondary.AssetRecord
	nextID   int64
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{
		bySource: make(map[string]*secondary.AssetRecord),
		byID:     make(map[int64]*secondary.AssetRecord),
	}
}

func (m *mockAssetRepo) Create(_ context.Context, asset *secondary.AssetRecord) (int64, error) {
	m.nextID++
	asset.ID = m.nextID
	m.bySource[asset.SourceURL] = asset
	m.byID[asset.ID] = asset
	return asset.ID, nil
}

func (m *mockAssetRepo) GetByID(_ context.Context, id int64) (*secondary.AssetRecord, error) {
	return m.byID[id], nil
}

func (m *mockAssetRepo) FindBySourceURL(_ context.Context, sourceURL string) (*secondary.AssetRecord, error) {
	return m.bySource[sourceURL], nil
}

func newTestImporter(t *testing.T, repo secondary.AssetRepository) *Importer {
	t.Helper()
	imp := NewImporter(repo, t.TempDir(), "/uploads")
	imp.retryDelay = 0
	return imp
}

// pngBytes renders a width x height PNG for test fixtures.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func serveImage(t *testing.T, body []byte, contentType string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportInvalidURL(t *testing.T) {
	imp := newTestImporter(t, newMockAssetRepo())

	for _, bad := range []string{"", "not a url", "ftp://example.com/a.jpg"} {
		_, err := imp.ImportImage(context.Background(), bad)

		var importErr *ImportError
		require.ErrorAs(t, err, &importErr)
		assert.Equal(t, "validate", importErr.Step)
	}
}

func TestImportSuccess(t *testing.T) {
	srv := serveImage(t, pngBytes(t, 10, 10), "image/png")
	repo := newMockAssetRepo()
	imp := newTestImporter(t, repo)

	asset, err := imp.ImportImage(context.Background(), srv.URL+"/media/photo.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), asset.ID)
	assert.Equal(t, "/uploads/photo.png", asset.URL)

	record := repo.byID[1]
	require.NotNil(t, record)
	assert.Equal(t, "image/png", record.MimeType)
	assert.Equal(t, 10, record.Width)
	assert.Equal(t, 10, record.Height)

	saved, err := os.ReadFile(record.Path)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
}

func TestImportIsIdempotent(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 4, 4))
	}))
	t.Cleanup(srv.Close)

	repo := newMockAssetRepo()
	imp := newTestImporter(t, repo)
	sourceURL := srv.URL + "/media/once.png"

	first, err := imp.ImportImage(context.Background(), sourceURL)
	require.NoError(t, err)

	second, err := imp.ImportImage(context.Background(), sourceURL)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, requests, "second import must not re-download")
}

func TestImportRetriesTransientStatuses(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 4, 4))
	}))
	t.Cleanup(srv.Close)

	imp := newTestImporter(t, newMockAssetRepo())

	_, err := imp.ImportImage(context.Background(), srv.URL+"/retry.png")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestImportDoesNotRetryNotFound(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	imp := newTestImporter(t, newMockAssetRepo())

	_, err := imp.ImportImage(context.Background(), srv.URL+"/gone.png")

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "download", importErr.Step)
	assert.Equal(t, 1, attempts)
}

func TestImportRejectsEmptyBody(t *testing.T) {
	srv := serveImage(t, nil, "image/png")
	imp := newTestImporter(t, newMockAssetRepo())

	_, err := imp.ImportImage(context.Background(), srv.URL+"/empty.png")

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "validate", importErr.Step)
}

func TestImportRejectsBadContentType(t *testing.T) {
	srv := serveImage(t, []byte("<html>not an image</html>"), "text/html")
	imp := newTestImporter(t, newMockAssetRepo())

	_, err := imp.ImportImage(context.Background(), srv.URL+"/page.html")

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Contains(t, importErr.Error(), "content type")
}

func TestImportRejectsBadMagicBytes(t *testing.T) {
	junk := bytes.Repeat([]byte{0x42}, 512)
	srv := serveImage(t, junk, "image/jpeg")
	imp := newTestImporter(t, newMockAssetRepo())

	_, err := imp.ImportImage(context.Background(), srv.URL+"/fake.jpg")

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Contains(t, importErr.Error(), "valid image")
}

func TestImportOctetStreamWithImageSignature(t *testing.T) {
	srv := serveImage(t, pngBytes(t, 4, 4), "application/octet-stream")
	repo := newMockAssetRepo()
	imp := newTestImporter(t, repo)

	_, err := imp.ImportImage(context.Background(), srv.URL+"/blob")
	require.NoError(t, err)
	assert.Equal(t, "image/png", repo.byID[1].MimeType)
}

func TestImportFilenameCollision(t *testing.T) {
	srv := serveImage(t, pngBytes(t, 4, 4), "image/png")
	repo := newMockAssetRepo()
	imp := newTestImporter(t, repo)

	// Occupy the natural filename so the importer must suffix.
	require.NoError(t, os.WriteFile(filepath.Join(imp.uploadsDir, "photo.png"), []byte("x"), 0644))

	asset, err := imp.ImportImage(context.Background(), srv.URL+"/a/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo_1.png", asset.URL)
}

func TestImportGeneratesVariants(t *testing.T) {
	srv := serveImage(t, pngBytes(t, 400, 200), "image/png")
	repo := newMockAssetRepo()
	imp := newTestImporter(t, repo)

	_, err := imp.ImportImage(context.Background(), srv.URL+"/wide.png")
	require.NoError(t, err)

	record := repo.byID[1]
	require.NotEmpty(t, record.Variants)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(record.Variants), &names))
	// 400px source: 150 and 300 variants, no 1024.
	assert.Equal(t, []string{"wide-150.png", "wide-300.png"}, names)

	for _, name := range names {
		if _, err := os.Stat(filepath.Join(imp.uploadsDir, name)); err != nil {
			t.Errorf("expected variant file %s: %v", name, err)
		}
	}
}
