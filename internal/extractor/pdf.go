package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/ledongthuc/pdf"
)

// lineTolerance is the vertical distance (points) within which two text runs
// are considered part of the same text line.
const lineTolerance = 2.0

// wordGapFactor times the font size is the horizontal gap that splits two
// runs into separate words.
const wordGapFactor = 0.30

// ExtractPDFLayout parses a PDF into a Document with per-page words, their
// positions and fonts, and the embedded metadata dictionary.
func ExtractPDFLayout(data []byte, fileName string, docType models.DocType) (*models.Document, error) {
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	doc := &models.Document{
		FileName: fileName,
		DocType:  docType,
		Raw:      data,
		Meta:     extractMeta(pdfReader),
	}

	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		doc.Pages = append(doc.Pages, models.Page{
			Number: i,
			Words:  assembleWords(content.Text),
		})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("PDF contains no readable pages")
	}

	doc.Image = extractLargestImage(pdfReader)

	return doc, nil
}

// extractLargestImage scans every page's XObject resources for embedded
// raster images and returns the largest one by pixel count. Scanned or
// recomposited PDFs carry their page scans this way; born-digital PDFs
// usually embed none and nil is returned.
func extractLargestImage(r *pdf.Reader) image.Image {
	var best image.Image
	var bestPixels int64

	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		xobjects := page.Resources().Key("XObject")
		if xobjects.IsNull() {
			continue
		}

		for _, name := range xobjects.Keys() {
			obj := xobjects.Key(name)
			if obj.Key("Subtype").Name() != "Image" {
				continue
			}

			w := obj.Key("Width").Int64()
			h := obj.Key("Height").Int64()
			if w*h <= bestPixels {
				continue
			}

			if img := decodeImageObject(obj, int(w), int(h)); img != nil {
				best = img
				bestPixels = w * h
			}
		}
	}

	return best
}

// decodeImageObject decodes one image XObject stream. Stream filters the
// pdf library does not support panic inside Reader; such images are skipped.
func decodeImageObject(obj pdf.Value, w, h int) (img image.Image) {
	defer func() {
		recover()
	}()

	rc := obj.Reader()
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil
	}

	// JPEG and PNG payloads decode directly.
	if decoded, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return decoded
	}

	return imageFromSamples(data, w, h, obj.Key("ColorSpace").Name())
}

// imageFromSamples rebuilds an image from the raw 8-bit samples left after
// stream decompression.
func imageFromSamples(data []byte, w, h int, colorSpace string) image.Image {
	if w <= 0 || h <= 0 {
		return nil
	}

	switch colorSpace {
	case "DeviceGray":
		if len(data) < w*h {
			return nil
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], data[y*w:(y+1)*w])
		}
		return img
	case "DeviceRGB":
		if len(data) < 3*w*h {
			return nil
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				o := (y*w + x) * 3
				img.SetNRGBA(x, y, color.NRGBA{R: data[o], G: data[o+1], B: data[o+2], A: 255})
			}
		}
		return img
	}

	return nil
}

// ExtractPDFText returns the plain text of a PDF, pages joined by newlines.
// Used by the comparison flow, which feeds text to the AI extractor.
func ExtractPDFText(data []byte) (string, error) {
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extractedText := strings.TrimSpace(textBuilder.String())
	if extractedText == "" {
		return "", fmt.Errorf("no text could be extracted from PDF")
	}

	return extractedText, nil
}

// assembleWords merges raw text runs into words: runs are clustered into
// lines by vertical position, ordered by X, and split on whitespace or on a
// horizontal gap larger than a fraction of the font size.
func assembleWords(runs []pdf.Text) []models.Word {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if absFloat(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y // top of page first
		}
		return sorted[i].X < sorted[j].X
	})

	var words []models.Word
	var current *models.Word
	var lastEnd float64

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			words = append(words, *current)
		}
		current = nil
	}

	for _, run := range sorted {
		if strings.TrimSpace(run.S) == "" {
			flush()
			continue
		}

		gap := run.X - lastEnd
		maxGap := wordGapFactor * run.FontSize
		if maxGap <= 0 {
			maxGap = 1.0
		}

		sameLine := current != nil && absFloat(run.Y-current.Y) <= lineTolerance
		if current == nil || !sameLine || gap > maxGap {
			flush()
			current = &models.Word{
				Text:     run.S,
				X:        run.X,
				Y:        run.Y,
				Font:     run.Font,
				FontSize: run.FontSize,
			}
		} else {
			current.Text += run.S
		}

		lastEnd = run.X + run.W
		current.Width = lastEnd - current.X
	}
	flush()

	return words
}

// extractMeta reads the PDF Info dictionary. Returns a partially filled
// DocumentMeta even when most keys are absent; absence itself is a signal
// for the metadata check.
func extractMeta(r *pdf.Reader) *models.DocumentMeta {
	defer func() {
		// Malformed trailers can panic inside the pdf library
		recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return &models.DocumentMeta{Raw: map[string]string{}}
	}

	meta := &models.DocumentMeta{Raw: map[string]string{}}

	for _, key := range info.Keys() {
		value := info.Key(key).RawString()
		if value == "" {
			continue
		}
		meta.Raw[key] = value

		switch key {
		case "Title":
			meta.Title = value
		case "Author":
			meta.Author = value
		case "Creator":
			meta.Creator = value
		case "Producer":
			meta.Producer = value
		case "CreationDate":
			meta.CreationDate = parsePDFDate(value)
		case "ModDate":
			meta.ModDate = parsePDFDate(value)
		}
	}

	return meta
}

// parsePDFDate parses the "D:YYYYMMDDHHMMSS" date form used by PDF Info
// dictionaries, ignoring the timezone suffix.
func parsePDFDate(s string) *time.Time {
	s = strings.TrimPrefix(s, "D:")

	digits := s
	for i, r := range s {
		if r < '0' || r > '9' {
			digits = s[:i]
			break
		}
	}

	layouts := []string{"20060102150405", "200601021504", "20060102"}
	for _, layout := range layouts {
		if len(digits) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, digits[:len(layout)]); err == nil {
			return &t
		}
	}

	return nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
