package localmedia

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxReferenceSide caps the longest side of a reference image sent upstream.
const MaxReferenceSide = 4096

// Decode limits. Headers claiming more than this are rejected before any
// pixel buffer is allocated.
const (
	MaxDecodeSide   = 16384
	MaxDecodePixels = 64 << 20
)

var ErrImageTooLarge = errors.New("image dimensions exceed decode limit")

var mimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

// Sniff validates raw image bytes against the registered decoders and
// returns the MIME type and dimensions.
func Sniff(raw []byte) (mime string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	mime, ok := mimeByFormat[format]
	if !ok {
		return "", 0, 0, fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width > MaxDecodeSide || cfg.Height > MaxDecodeSide ||
		int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return "", 0, 0, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return mime, cfg.Width, cfg.Height, nil
}

// ToPNG re-encodes raw into PNG unless it already is one.
func ToPNG(raw []byte) ([]byte, error) {
	if _, _, _, err := Sniff(raw); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		return raw, nil
	}
	return encodePNG(img)
}

// Downscale shrinks raw so its longest side is at most maxSide, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Downscale(raw []byte, maxSide int) ([]byte, string, error) {
	mime, w, h, err := Sniff(raw)
	if err != nil {
		return nil, "", err
	}
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return raw, mime, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	nw, nh := maxSide, maxSide
	if w >= h {
		nh = h * maxSide / w
	} else {
		nw = w * maxSide / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	out, err := encodePNG(dst)
	if err != nil {
		return nil, "", err
	}
	return out, "image/png", nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
