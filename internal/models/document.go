package models

import (
	"image"
	"strings"
	"time"
)

// DocType is the declared type of an uploaded tax document.
type DocType string

const (
	DocTypeNOA     DocType = "noa"
	DocTypeT1      DocType = "t1"
	DocTypeUnknown DocType = "unknown"
)

// ParseDocType normalizes a user-supplied document type string.
func ParseDocType(s string) (DocType, bool) {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case DocTypeNOA:
		return DocTypeNOA, true
	case DocTypeT1:
		return DocTypeT1, true
	case DocTypeUnknown, "":
		return DocTypeUnknown, true
	}
	return DocTypeUnknown, false
}

// Word is a single extracted word with its position and font on the page.
type Word struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Font     string  `json:"font"`
	FontSize float64 `json:"font_size"`
}

// Page holds the extracted layout of one document page.
type Page struct {
	Number int    `json:"number"`
	Words  []Word `json:"words"`
}

// Text joins the page's words in extraction order.
func (p Page) Text() string {
	parts := make([]string, 0, len(p.Words))
	for _, w := range p.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// DocumentMeta carries the embedded metadata of a PDF document.
// Nil for raster-only uploads, which have no such dictionary.
type DocumentMeta struct {
	Title        string            `json:"title,omitempty"`
	Author       string            `json:"author,omitempty"`
	Creator      string            `json:"creator,omitempty"`
	Producer     string            `json:"producer,omitempty"`
	CreationDate *time.Time        `json:"creation_date,omitempty"`
	ModDate      *time.Time        `json:"mod_date,omitempty"`
	Raw          map[string]string `json:"raw,omitempty"`
}

// Document is one uploaded file after layout extraction. It lives for the
// duration of a single analysis request and is never persisted.
type Document struct {
	FileName string
	DocType  DocType
	Raw      []byte
	Pages    []Page
	Meta     *DocumentMeta
	// Image is the decoded raster: the upload itself for JPEG/PNG, or the
	// largest embedded page image for PDFs. Nil when neither exists.
	Image image.Image
}

// WordCount returns the total number of extracted words across all pages.
func (d *Document) WordCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Words)
	}
	return n
}

// Text returns all extracted text, pages separated by newlines.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

// UploadRequest is a parsed multipart upload handed from the web layer to
// the forensics service.
type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
	DocType     DocType
}
