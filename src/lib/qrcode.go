package lib

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"

	"github.com/yeqown/go-qrcode"
)

const publicQRCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// GenerateTicketQRCode writes a QR code image encoding content to dir and
// returns its path.
func GenerateTicketQRCode(dir string, name string, content string) (string, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.jpeg", name))
	if err := qrc.Save(path); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", path, err.Error())
		return "", err
	}
	return path, nil
}

// PublicQRCodeURL returns an image URL rendered by the public QR code API.
func PublicQRCodeURL(content string) string {
	q := url.Values{}
	q.Set("size", "300x300")
	q.Set("data", content)
	return publicQRCodeEndpoint + "?" + q.Encode()
}
