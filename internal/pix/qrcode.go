package pix

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the side, in pixels, of rendered QR images.
const DefaultQRSize = 256

// QRRenderer turns a payload into an image data URI.
type QRRenderer interface {
	Render(payload string) (string, error)
}

// PNGRenderer renders QR codes as base64 PNG data URIs.
type PNGRenderer struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewPNGRenderer returns a renderer with medium error correction.
func NewPNGRenderer(size int) *PNGRenderer {
	if size <= 0 {
		size = DefaultQRSize
	}
	return &PNGRenderer{Size: size, Level: qrcode.Medium}
}

// Render encodes payload into a data:image/png;base64 URI.
func (r *PNGRenderer) Render(payload string) (string, error) {
	png, err := qrcode.Encode(payload, r.Level, r.Size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
