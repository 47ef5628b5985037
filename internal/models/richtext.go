package models

import "encoding/json"

// Rich-content node type constants as emitted by the Wix content API.
const (
	NodeParagraph = "PARAGRAPH"
	NodeHeading   = "HEADING"
	NodeText      = "TEXT"
	NodeImage     = "IMAGE"
	NodeList      = "LIST"
	NodeListItem  = "LIST_ITEM"
)

// Text decoration type constants.
const (
	DecorationBold      = "BOLD"
	DecorationItalic    = "ITALIC"
	DecorationUnderline = "UNDERLINE"
	DecorationColor     = "COLOR"
	DecorationLink      = "LINK"
)

// RichContent is the root of a Wix rich-content document.
type RichContent struct {
	Nodes []Node `json:"nodes,omitempty"`
}

// Node is one node of the rich-content tree. The tree is read-only
// input to the transpiler and is never mutated.
//
// ImageData stays raw: the provider emits several incompatible shapes
// for it, which are probed by ordered extraction strategies rather
// than decoded into a single struct.
type Node struct {
	Type        string          `json:"type"`
	Nodes       []Node          `json:"nodes,omitempty"`
	HeadingData *HeadingData    `json:"headingData,omitempty"`
	TextData    *TextData       `json:"textData,omitempty"`
	ImageData   json.RawMessage `json:"imageData,omitempty"`
	ListData    *ListData       `json:"listData,omitempty"`
}

// HeadingData carries the declared heading level.
type HeadingData struct {
	Level int `json:"level,omitempty"`
}

// TextData is the payload of a TEXT leaf node.
type TextData struct {
	Text        string       `json:"text,omitempty"`
	Decorations []Decoration `json:"decorations,omitempty"`
}

// ListData distinguishes ordered from unordered lists.
type ListData struct {
	Type string `json:"type,omitempty"` // "ORDERED" or "UNORDERED"
}

// Decoration is one text decoration applied to a TEXT node.
type Decoration struct {
	Type      string     `json:"type"`
	ColorData *ColorData `json:"colorData,omitempty"`
	LinkData  *LinkData  `json:"linkData,omitempty"`
}

// ColorData carries foreground/background colors for COLOR decorations.
type ColorData struct {
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
}

// LinkData carries the target of a LINK decoration.
type LinkData struct {
	Link Link `json:"link"`
}

// Link is a hyperlink target. Target "BLANK" maps to target="_blank".
type Link struct {
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
}
