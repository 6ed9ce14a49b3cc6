package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

// HTTPSender posts the ticket email payload to the hosted email function.
type HTTPSender struct {
	client *resty.Client
	url    string
}

func NewHTTPSender(url string, serviceKey string) *HTTPSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	if serviceKey != "" {
		client.SetAuthToken(serviceKey)
	}
	return &HTTPSender{client: client, url: url}
}

func (s *HTTPSender) Send(ctx context.Context, n types.TicketNotification) error {
	if s.url == "" {
		return errors.New("notification function url not configured")
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(n).
		Post(s.url)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("ticket email function returned %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
