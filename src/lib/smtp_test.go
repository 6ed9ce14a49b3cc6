package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailMessage(t *testing.T) {
	msg, err := NewMailMessage(&SendMailInput{
		From:     "billetterie@orientale-musique.test",
		FromName: "Orientale Musique",
		To:       []string{"samira@example.test"},
		ReplyTo:  "booking@orientale-musique.test",
		Subject:  "Vos billets",
		Body:     "<p>Merci</p>",
		Html:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vos billets"}, msg.GetGenHeader("Subject"))
	assert.Len(t, msg.GetTo(), 1)
}

func TestNewMailMessageRejectsBadAddress(t *testing.T) {
	_, err := NewMailMessage(&SendMailInput{From: "not an address", To: []string{"samira@example.test"}})
	assert.Error(t, err)
}
