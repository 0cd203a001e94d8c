package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const MaxImageBytes = 2 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

var DefaultSignatureWebP = WebPOptions{MaxW: 600, MaxH: 200, Quality: 85}

// SniffImage checks size and content type of an uploaded image.
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", len(data), MaxImageBytes)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if !allowedImageTypes[ct] {
		return "", fmt.Errorf("unsupported image type %s", ct)
	}
	return ct, nil
}

// ToWebP decodes, fits the image into MaxW x MaxH keeping aspect, and encodes lossy WebP.
func ToWebP(data []byte, opt WebPOptions) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if opt.MaxW > 0 && opt.MaxH > 0 && (b.Dx() > opt.MaxW || b.Dy() > opt.MaxH) {
		img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.Lanczos)
	}
	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
