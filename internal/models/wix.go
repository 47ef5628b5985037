// Package models contains domain types for wixport entities.
// SQL persistence lives in internal/adapters/sqlite/*.go
package models

import "encoding/json"

// WixCategory is a blog category as returned by the Wix content API.
type WixCategory struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// WixTag is a blog tag as returned by the Wix content API.
type WixTag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug,omitempty"`
}

// WixPost is a blog post as returned by the Wix content API.
//
// CoverMedia is kept raw because its shape varies between provider
// versions; extraction strategies in core/richtext probe it.
type WixPost struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Excerpt            string          `json:"excerpt,omitempty"`
	Slug               string          `json:"slug,omitempty"`
	Featured           bool            `json:"featured,omitempty"`
	Pinned             bool            `json:"pinned,omitempty"`
	MinutesToRead      int             `json:"minutesToRead,omitempty"`
	Hashtags           []string        `json:"hashtags,omitempty"`
	CategoryIDs        []string        `json:"categoryIds,omitempty"`
	TagIDs             []string        `json:"tagIds,omitempty"`
	FirstPublishedDate string          `json:"firstPublishedDate,omitempty"`
	LastPublishedDate  string          `json:"lastPublishedDate,omitempty"`
	CoverMedia         json.RawMessage `json:"coverMedia,omitempty"`
	RichContent        *RichContent    `json:"richContent,omitempty"`
}
