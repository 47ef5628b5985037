// Package richtext converts Wix rich-content node trees into HTML.
//
// The node schema is not fully documented by the provider, so parsing
// is deliberately lenient: unknown node types recurse into their
// children without a wrapper, and malformed nodes are skipped silently.
package richtext

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/example/wixport/internal/models"
)

// MigratedImageClass marks <img> tags produced by the migration.
const MigratedImageClass = "wix-migrated-image"

// ImportedAsset is a locally persisted image returned by an AssetResolver.
type ImportedAsset struct {
	ID  int64
	URL string
}

// AssetResolver imports a remote image and returns its local identity.
// Implemented by core/assets.Importer; a failure is never fatal to the
// enclosing transpile, which falls back to the original remote URL.
type AssetResolver interface {
	ImportImage(ctx context.Context, sourceURL string) (*ImportedAsset, error)
}

// Transpiler renders rich-content node trees to HTML. The input tree
// is never mutated.
type Transpiler struct {
	assets AssetResolver
}

// NewTranspiler creates a transpiler. assets may be nil, in which case
// images keep their original remote URLs.
func NewTranspiler(assets AssetResolver) *Transpiler {
	return &Transpiler{assets: assets}
}

// Transpile renders a rich-content document to HTML. An empty or
// node-less document yields an empty string.
func (t *Transpiler) Transpile(ctx context.Context, rc *models.RichContent) string {
	if rc == nil || len(rc.Nodes) == 0 {
		return ""
	}
	return t.renderNodes(ctx, rc.Nodes)
}

func (t *Transpiler) renderNodes(ctx context.Context, nodes []models.Node) string {
	var content strings.Builder

	for _, node := range nodes {
		if node.Type == "" {
			continue
		}

		switch node.Type {
		case models.NodeParagraph:
			inner := t.renderNodes(ctx, node.Nodes)
			if strings.TrimSpace(inner) != "" {
				content.WriteString("<p>" + inner + "</p>\n")
			}

		case models.NodeHeading:
			level := 2
			if node.HeadingData != nil {
				level = clampHeadingLevel(node.HeadingData.Level)
			}
			inner := t.renderNodes(ctx, node.Nodes)
			if strings.TrimSpace(inner) != "" {
				content.WriteString(fmt.Sprintf("<h%d>%s</h%d>\n", level, inner, level))
			}

		case models.NodeText:
			if node.TextData != nil && node.TextData.Text != "" {
				content.WriteString(applyDecorations(node.TextData.Text, node.TextData.Decorations))
			}

		case models.NodeImage:
			content.WriteString(t.renderImage(ctx, node))

		case models.NodeList:
			tag := "ul"
			if node.ListData != nil && node.ListData.Type == "ORDERED" {
				tag = "ol"
			}
			inner := t.renderNodes(ctx, node.Nodes)
			if strings.TrimSpace(inner) != "" {
				content.WriteString("<" + tag + ">" + inner + "</" + tag + ">\n")
			}

		case models.NodeListItem:
			inner := t.renderNodes(ctx, node.Nodes)
			if strings.TrimSpace(inner) != "" {
				content.WriteString("<li>" + inner + "</li>\n")
			}

		default:
			// Unknown node types: recurse into children, no wrapper.
			content.WriteString(t.renderNodes(ctx, node.Nodes))
		}
	}

	return content.String()
}

// renderImage resolves the image source, attempts a local import, and
// falls back to the original remote URL when the import fails.
func (t *Transpiler) renderImage(ctx context.Context, node models.Node) string {
	src := ExtractImageURL(node.ImageData)
	if src == "" {
		return ""
	}
	alt := ExtractAltText(node.ImageData)

	if t.assets != nil {
		if asset, err := t.assets.ImportImage(ctx, src); err == nil && asset != nil {
			return fmt.Sprintf("<img src=%q alt=%q class=\"%s asset-%d\" />\n",
				asset.URL, html.EscapeString(alt), MigratedImageClass, asset.ID)
		}
	}

	return fmt.Sprintf("<img src=%q alt=%q class=%q />\n",
		src, html.EscapeString(alt), MigratedImageClass)
}

// clampHeadingLevel bounds a declared heading level to the valid range.
func clampHeadingLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// applyDecorations escapes the text and wraps it per decoration:
// bold/italic as encountered, underline and color collected into one
// inline style span, link wrap outermost.
func applyDecorations(text string, decorations []models.Decoration) string {
	formatted := html.EscapeString(text)

	var (
		styles     []string
		linkURL    string
		linkTarget string
	)

	for _, decoration := range decorations {
		switch decoration.Type {
		case models.DecorationBold:
			formatted = "<strong>" + formatted + "</strong>"

		case models.DecorationItalic:
			formatted = "<em>" + formatted + "</em>"

		case models.DecorationUnderline:
			styles = append(styles, "text-decoration: underline")

		case models.DecorationColor:
			if decoration.ColorData == nil {
				continue
			}
			if color := sanitizeHexColor(decoration.ColorData.Foreground); color != "" {
				styles = append(styles, "color: "+color)
			}
			// A white background is the editor default, not a choice.
			if bg := sanitizeHexColor(decoration.ColorData.Background); bg != "" && !strings.EqualFold(bg, "#ffffff") {
				styles = append(styles, "background-color: "+bg)
			}

		case models.DecorationLink:
			if decoration.LinkData != nil && IsValidURL(decoration.LinkData.Link.URL) {
				linkURL = decoration.LinkData.Link.URL
				linkTarget = ""
				if decoration.LinkData.Link.Target == "BLANK" {
					linkTarget = "_blank"
				}
			}
		}
	}

	if len(styles) > 0 {
		formatted = fmt.Sprintf("<span style=%q>%s</span>", strings.Join(styles, "; "), formatted)
	}

	if linkURL != "" {
		targetAttr := ""
		if linkTarget != "" {
			targetAttr = fmt.Sprintf(" target=%q rel=\"noopener noreferrer\"", linkTarget)
		}
		formatted = fmt.Sprintf("<a href=%q%s>%s</a>", linkURL, targetAttr, formatted)
	}

	return formatted
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// sanitizeHexColor returns the color when it is a valid 3- or 6-digit
// hex color, "" otherwise.
func sanitizeHexColor(color string) string {
	if hexColorPattern.MatchString(color) {
		return color
	}
	return ""
}
