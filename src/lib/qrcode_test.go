package lib

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketQRCode(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateTicketQRCode(dir, "ticket-1", "8f8b7c1e-2f7e-4a43-9d3f-3f1f0a4f6f10")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestPublicQRCodeURL(t *testing.T) {
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?data=a+b%26c&size=300x300",
		PublicQRCodeURL("a b&c"),
	)
}
