package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

var ticketEmail = template.Must(template.New("ticket").Parse(`<html>
<body>
<p>Bonjour {{.BuyerName}},</p>
<p>Votre commande pour <strong>{{.EventTitle}}</strong> est confirmée.</p>
<ul>
<li>Date : {{.EventDate.Format "02/01/2006 15:04"}}</li>
<li>Lieu : {{.Venue}}</li>
<li>Billet : {{.TierName}} x {{.Quantity}}</li>
<li>Montant : {{.FinalAmount.StringFixed 2}} €</li>
</ul>
{{if .QRCodeURL}}<p><img src="{{.QRCodeURL}}" alt="QR code" width="300" height="300"></p>{{end}}
<p>Organisé par {{.OrganizerName}}{{if .OrganizerEmail}} ({{.OrganizerEmail}}){{end}}</p>
</body>
</html>`))

// SMTPSender renders the ticket email and sends it directly.
type SMTPSender struct {
	from string
	send func(*lib.SendMailInput) error
}

func NewSMTPSender(from string) *SMTPSender {
	return &SMTPSender{from: from, send: lib.SendMail}
}

func renderTicketEmail(n types.TicketNotification) (*lib.SendMailInput, error) {
	var body bytes.Buffer
	if err := ticketEmail.Execute(&body, n); err != nil {
		return nil, err
	}
	return &lib.SendMailInput{
		FromName: "Orientale Musique",
		To:       []string{n.BuyerEmail},
		ReplyTo:  n.OrganizerEmail,
		Subject:  fmt.Sprintf("Vos billets pour %s", n.EventTitle),
		Body:     body.String(),
		Html:     true,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, n types.TicketNotification) error {
	input, err := renderTicketEmail(n)
	if err != nil {
		return err
	}
	input.From = s.from
	return s.send(input)
}
