// Package notify delivers ticket emails for confirmed purchases off the
// webhook request path.
package notify

import (
	"context"
	"fmt"

	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

// Sender hands one ticket email to a delivery channel.
type Sender interface {
	Send(ctx context.Context, n types.TicketNotification) error
}

const (
	TransportHTTP  = "http"
	TransportSMTP  = "smtp"
	TransportSQS   = "sqs"
	TransportKafka = "kafka"
)

// NewSender builds the sender for the configured transport.
func NewSender(transport string) (Sender, error) {
	switch transport {
	case TransportHTTP, "":
		return NewHTTPSender(config.NotifyFunctionURL(), config.DataStoreServiceKey()), nil
	case TransportSMTP:
		return NewSMTPSender(config.MailFrom()), nil
	case TransportSQS:
		return NewSQSSender(config.EmailQueue()), nil
	case TransportKafka:
		return NewKafkaSender(config.EmailQueue()), nil
	}
	return nil, fmt.Errorf("unknown notification transport %q", transport)
}
