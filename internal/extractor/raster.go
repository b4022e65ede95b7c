package extractor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

// ExtractRaster builds a Document from a JPEG or PNG upload. Raster inputs
// carry no text layout and no embedded metadata dictionary, so the text and
// metadata checks report themselves inapplicable; the image-quality check
// operates on the decoded pixels.
func ExtractRaster(data []byte, fileName string, docType models.DocType) (*models.Document, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &models.Document{
		FileName: fileName,
		DocType:  docType,
		Raw:      data,
		Image:    img,
	}, nil
}
