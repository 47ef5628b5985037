// Package assets downloads remote images, validates them, and persists
// them locally with dedupe by source URL.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/example/wixport/internal/core/richtext"
	"github.com/example/wixport/internal/ports/secondary"
)

const (
	downloadTimeout = 45 * time.Second
	maxRetries      = 3
	retryDelay      = time.Second
	// magicByteFloor: bodies at or below this size skip the signature
	// check (tiny tracking pixels and the like).
	magicByteFloor = 100
)

// variantWidths are the generated size variants, when the source image
// is wide enough and the format is re-encodable.
var variantWidths = []int{150, 300, 1024}

// retryableStatuses are transient HTTP failures worth retrying.
var retryableStatuses = map[int]bool{
	http.StatusForbidden:           true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// allowedContentTypes is the image content-type allow-list. Generic
// octet-stream responses fall through to the magic-byte check.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var genericContentTypes = map[string]bool{
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// ImportError is the typed failure returned by every import step.
// Callers must treat it as non-fatal to the enclosing post migration.
type ImportError struct {
	URL  string
	Step string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("asset import %s failed for %s: %v", e.Step, e.URL, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Importer implements richtext.AssetResolver: it fetches remote images
// into the uploads directory and records them for idempotent reuse.
type Importer struct {
	repo       secondary.AssetRepository
	httpClient *http.Client
	uploadsDir string
	baseURL    string

	retryDelay time.Duration
}

// NewImporter creates an importer persisting files under uploadsDir and
// serving them under baseURL.
func NewImporter(repo secondary.AssetRepository, uploadsDir, baseURL string) *Importer {
	return &Importer{
		repo:       repo,
		httpClient: &http.Client{Timeout: downloadTimeout},
		uploadsDir: uploadsDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		retryDelay: retryDelay,
	}
}

// ImportImage imports the image at sourceURL and returns its local
// identity. Importing the same source URL twice returns the same asset
// without re-downloading.
func (i *Importer) ImportImage(ctx context.Context, sourceURL string) (*richtext.ImportedAsset, error) {
	if !richtext.IsValidURL(sourceURL) {
		return nil, &ImportError{URL: sourceURL, Step: "validate", Err: fmt.Errorf("invalid image URL")}
	}

	// Dedupe by stored source URL.
	existing, err := i.repo.FindBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "dedupe", Err: err}
	}
	if existing != nil {
		return &richtext.ImportedAsset{ID: existing.ID, URL: i.publicURL(existing.Filename)}, nil
	}

	body, contentType, err := i.download(ctx, sourceURL)
	if err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "download", Err: err}
	}

	mimeType, err := validateImage(body, contentType)
	if err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "validate", Err: err}
	}

	filename, err := i.uniqueFilename(sourceURL)
	if err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "persist", Err: err}
	}

	if err := os.MkdirAll(i.uploadsDir, 0755); err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "persist", Err: err}
	}
	filePath := filepath.Join(i.uploadsDir, filename)
	if err := os.WriteFile(filePath, body, 0644); err != nil {
		return nil, &ImportError{URL: sourceURL, Step: "persist", Err: err}
	}

	record := &secondary.AssetRecord{
		Filename:  filename,
		Path:      filePath,
		MimeType:  mimeType,
		SourceURL: sourceURL,
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
		record.Width = cfg.Width
		record.Height = cfg.Height
	}

	// Size variants are best-effort: an undecodable or narrow source
	// simply gets none.
	record.Variants = i.generateVariants(filename, body, record.Width)

	id, err := i.repo.Create(ctx, record)
	if err != nil {
		os.Remove(filePath)
		return nil, &ImportError{URL: sourceURL, Step: "persist", Err: err}
	}

	return &richtext.ImportedAsset{ID: id, URL: i.publicURL(filename)}, nil
}

func (i *Importer) publicURL(filename string) string {
	return i.baseURL + "/" + filename
}

// download fetches the image bytes, retrying transient failures with a
// constant backoff.
func (i *Importer) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
	)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "image/*,*/*;q=0.8")
		req.Header.Set("User-Agent", "wixport/1.0")

		resp, err := i.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
			if retryableStatuses[resp.StatusCode] {
				return err
			}
			return backoff.Permanent(err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(i.retryDelay), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, "", err
	}

	return body, contentType, nil
}

// imageSignatures maps magic-byte prefixes to formats.
var imageSignatures = map[string]string{
	"\xFF\xD8\xFF":         "jpg",
	"\x89PNG\r\n\x1a\n":    "png",
	"GIF87a":               "gif",
	"GIF89a":               "gif",
	"RIFF":                 "webp", // partial check
}

// validateImage checks the body and content type, returning the mime
// type to record.
func validateImage(body []byte, contentType string) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty image data received")
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if normalized != "" && !allowedContentTypes[normalized] && !genericContentTypes[normalized] {
		return "", fmt.Errorf("invalid image content type: %s", contentType)
	}

	matched := ""
	for signature, format := range imageSignatures {
		if len(body) >= len(signature) && string(body[:len(signature)]) == signature {
			matched = format
			break
		}
	}
	if matched == "" && len(body) > magicByteFloor {
		return "", fmt.Errorf("downloaded data does not appear to be a valid image")
	}

	if allowedContentTypes[normalized] {
		return normalized, nil
	}
	switch matched {
	case "jpg":
		return "image/jpeg", nil
	case "png":
		return "image/png", nil
	case "gif":
		return "image/gif", nil
	case "webp":
		return "image/webp", nil
	}
	return "application/octet-stream", nil
}

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// uniqueFilename derives a collision-free filename from the source URL,
// suffixing a counter on name clashes.
func (i *Importer) uniqueFilename(sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", err
	}

	base := path.Base(parsed.Path)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	name := strings.TrimSuffix(base, path.Ext(base))

	name = filenameSanitizer.ReplaceAllString(name, "_")
	if name == "" || name == "_" || name == "." || name == "/" {
		name = fmt.Sprintf("wix_image_%d", time.Now().Unix())
	}
	if ext == "" {
		ext = "jpg"
	}

	candidate := name + "." + ext
	original := name
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(i.uploadsDir, candidate)); os.IsNotExist(err) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d.%s", original, counter, ext)
	}
}

// generateVariants writes scaled-down copies for each variant width
// smaller than the source, returning a JSON list of their filenames.
func (i *Importer) generateVariants(filename string, body []byte, sourceWidth int) string {
	src, format, err := image.Decode(bytes.NewReader(body))
	if err != nil || (format != "jpeg" && format != "png") {
		return ""
	}

	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	var names []string
	for _, width := range variantWidths {
		if sourceWidth <= width {
			continue
		}

		bounds := src.Bounds()
		height := bounds.Dy() * width / bounds.Dx()
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)

		variantName := fmt.Sprintf("%s-%d%s", stem, width, ext)
		out, err := os.Create(filepath.Join(i.uploadsDir, variantName))
		if err != nil {
			continue
		}
		switch format {
		case "jpeg":
			err = jpeg.Encode(out, scaled, &jpeg.Options{Quality: 85})
		case "png":
			err = png.Encode(out, scaled)
		}
		out.Close()
		if err != nil {
			os.Remove(filepath.Join(i.uploadsDir, variantName))
			continue
		}
		names = append(names, variantName)
	}

	if len(names) == 0 {
		return ""
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(encoded)
}

var _ richtext.AssetResolver = (*Importer)(nil)
