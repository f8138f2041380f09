package service

// QRImageService renders QR payloads into PNG images.
type QRImageService interface {
	// RenderPNG encodes the payload string into a PNG image using the
	// configured size and error correction level.
	RenderPNG(payload string) ([]byte, error)
}
