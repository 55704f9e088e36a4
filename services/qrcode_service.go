// services/qrcode_service.go
package services

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeEncoder is a seam over qrcode.Encode for tests.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// VerificationQR creates the PNG QR code pointing at an athlete's public
// verification page.
func VerificationQR(verifyURL string, size int, encode QRCodeEncoder) ([]byte, error) {
	if encode == nil {
		encode = qrcode.Encode
	}
	return encode(verifyURL, qrcode.Medium, size)
}
