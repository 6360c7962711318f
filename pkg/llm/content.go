package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Content item types.
const (
	ItemTypeText  = "text"
	ItemTypeImage = "image"
)

// URL is a URI reference, used for images. The URI may be a data URL.
type URL struct {
	URI string `json:"uri"`
}

// Image references image data either by URL or by inline base64 data.
type Image struct {
	URL  *URL   `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

// ContentItem is a single typed piece of interleaved content.
type ContentItem struct {
	Type  string `json:"type"`            // "text" or "image"
	Text  string `json:"text,omitempty"`  // Set for text items
	Image *Image `json:"image,omitempty"` // Set for image items
}

// Content is interleaved message content. When Items is empty the content is
// plain text and encodes as a JSON string; otherwise it encodes as a single
// item object, or as a list when there is more than one item.
type Content struct {
	Text  string
	Items []ContentItem
}

// TextContent returns plain text content.
func TextContent(text string) Content {
	return Content{Text: text}
}

// ImageURLContent returns content holding a single image item that points at uri.
func ImageURLContent(uri string) Content {
	return Content{Items: []ContentItem{{
		Type:  ItemTypeImage,
		Image: &Image{URL: &URL{URI: uri}},
	}}}
}

// IsImage reports whether any item of the content is an image.
func (c Content) IsImage() bool {
	for _, item := range c.Items {
		if item.Type == ItemTypeImage {
			return true
		}
	}
	return false
}

// String returns the textual part of the content.
func (c Content) String() string {
	if len(c.Items) == 0 {
		return c.Text
	}

	var b strings.Builder
	for _, item := range c.Items {
		if item.Type == ItemTypeText {
			b.WriteString(item.Text)
		}
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	switch len(c.Items) {
	case 0:
		return json.Marshal(c.Text)
	case 1:
		return json.Marshal(c.Items[0])
	default:
		return json.Marshal(c.Items)
	}
}

// UnmarshalJSON implements json.Unmarshaler. It accepts a string, a single
// content item or a list of content items.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*c = Content{Text: text}
	case '{':
		var item ContentItem
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return err
		}
		*c = Content{Items: []ContentItem{item}}
	case '[':
		var items []ContentItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*c = Content{Items: items}
	default:
		return fmt.Errorf("unsupported content encoding: %s", string(trimmed))
	}
	return nil
}
