package models

// Content type constants for identity-map rows. One (wix_id, content
// type) pair maps to exactly one local id.
const (
	ContentTypeCategory = "category"
	ContentTypeTag      = "tag"
	ContentTypePost     = "post"
	ContentTypeAsset    = "asset"
)

// Migration action constants returned by per-item processing.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// FailedItem records one item that failed transform or persist, with
// enough context for a manual retry. Payload carries the original
// remote record verbatim when a retry is possible.
type FailedItem struct {
	WixID         string   `json:"wix_id"`
	Title         string   `json:"title"`
	Error         string   `json:"error"`
	RetryPossible bool     `json:"retry_possible"`
	Payload       *WixPost `json:"wix_data,omitempty"`
}
