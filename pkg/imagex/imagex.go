// Package imagex decodes uploaded images and re-encodes them as JPEG, the
// single format sent to vision providers regardless of what was uploaded.
package imagex

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

const jpegQuality = 90

// ReencodeJPEG decodes data as any registered image format and returns JPEG
// bytes. The error wraps the decoder error for undecodable input.
func ReencodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
