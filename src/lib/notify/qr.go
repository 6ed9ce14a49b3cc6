package notify

import (
	"context"
	"os"
	"time"

	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

// QRResolver returns the URL of the QR code image printed on the ticket.
type QRResolver interface {
	Resolve(ctx context.Context, n types.TicketNotification) (string, error)
}

// PublicQRResolver points at the public QR code rendering API.
type PublicQRResolver struct{}

func (PublicQRResolver) Resolve(_ context.Context, n types.TicketNotification) (string, error) {
	return lib.PublicQRCodeURL(n.PurchaseID), nil
}

// S3QRResolver renders the code locally and serves it from the assets bucket.
type S3QRResolver struct {
	Bucket  string
	TempDir string
	Expires time.Duration
}

func (r S3QRResolver) Resolve(ctx context.Context, n types.TicketNotification) (string, error) {
	path, err := lib.GenerateTicketQRCode(r.TempDir, n.PurchaseID, n.PurchaseID)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	return lib.S3UploadAsset(ctx, r.Bucket, "tickets/"+n.PurchaseID+".jpeg", path, r.Expires)
}

// NewQRResolver uses the assets bucket when one is configured.
func NewQRResolver(bucket string, tempDir string) QRResolver {
	if bucket == "" {
		return PublicQRResolver{}
	}
	return S3QRResolver{Bucket: bucket, TempDir: tempDir, Expires: 7 * 24 * time.Hour}
}
