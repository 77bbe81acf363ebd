package helpers

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

// QRCodePNG renders a QR image encoding the ticket id.
func QRCodePNG(ticketID uuid.UUID) ([]byte, error) {
	return qrcode.Encode(ticketID.String(), qrcode.Medium, qrCodeSize)
}

// GenerateQRCode returns the QR image of the ticket id as a PNG data URL.
func GenerateQRCode(ticketID uuid.UUID) (string, error) {
	png, err := QRCodePNG(ticketID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
