// Package plivo controls outbound calls through the Plivo voice API.
package plivo

import (
	"context"
	"fmt"
	"os"
	"strings"

	plivosdk "github.com/plivo/plivo-go/v7"

	"github.com/orderline-ai/orderline/core/carrier"
)

// Controller places and steers calls through Plivo's REST API. Signaling
// comes back through the webhook endpoints rooted at baseURL.
type Controller struct {
	client  *plivosdk.Client
	baseURL string
}

func NewController(baseURL string) (*Controller, error) {
	authID, ok := os.LookupEnv("PLIVO_AUTH_ID")
	if !ok {
		return nil, fmt.Errorf("plivo auth id not found")
	}
	authToken, ok := os.LookupEnv("PLIVO_AUTH_TOKEN")
	if !ok {
		return nil, fmt.Errorf("plivo auth token not found")
	}

	client, err := plivosdk.NewClient(authID, authToken, &plivosdk.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create plivo client: %w", err)
	}

	return &Controller{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (c *Controller) PlaceCall(_ context.Context, params carrier.DialParams) (string, error) {
	response, err := c.client.Calls.Create(plivosdk.CallCreateParams{
		From:         params.From,
		To:           params.To,
		AnswerURL:    c.webhookURL("answer", params.SessionID),
		AnswerMethod: "POST",
		HangupURL:    c.webhookURL("hangup", params.SessionID),
		HangupMethod: "POST",
		RingURL:      c.webhookURL("ring", params.SessionID),
		RingMethod:   "POST",
	})
	if err != nil {
		return "", &carrier.ActionError{Action: "place_call", Err: err}
	}
	// The SDK leaves the request identifier untyped.
	return fmt.Sprint(response.RequestUUID), nil
}

func (c *Controller) SendDigits(_ context.Context, callUUID string, digits string) error {
	if _, err := c.client.Calls.SendDigits(callUUID, plivosdk.CallDTMFParams{
		Digits: digits,
		Legs:   "bleg",
	}); err != nil {
		return &carrier.ActionError{Action: "send_digits", Err: err}
	}
	return nil
}

// Bridge redirects the call leg to the bridge answer endpoint, which
// dials the customer in. Plivo rejects redirects on ended calls; that
// surfaces as a transfer failure, not a hangup.
func (c *Controller) Bridge(_ context.Context, callUUID string, customerNumber string) error {
	if customerNumber == "" {
		return carrier.ErrTransferUnavailable
	}
	if _, err := c.client.Calls.Update(callUUID, plivosdk.CallUpdateParams{
		Legs:       "aleg",
		AlegURL:    c.webhookURL("bridge", customerNumber),
		AlegMethod: "POST",
	}); err != nil {
		return &carrier.ActionError{Action: "bridge", Err: err}
	}
	return nil
}

func (c *Controller) HangUp(_ context.Context, callUUID string) error {
	if err := c.client.Calls.Delete(callUUID); err != nil {
		// A call that already ended cannot be hung up again; Plivo
		// reports that as not found.
		if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "not found") {
			return nil
		}
		return &carrier.ActionError{Action: "hang_up", Err: err}
	}
	return nil
}

func (c *Controller) StartRecording(_ context.Context, callUUID string) (string, error) {
	response, err := c.client.Calls.Record(callUUID, plivosdk.CallRecordParams{
		CallbackURL:    c.webhookURL("recording", callUUID),
		CallbackMethod: "POST",
	})
	if err != nil {
		return "", &carrier.ActionError{Action: "start_recording", Err: err}
	}
	return response.URL, nil
}

func (c *Controller) webhookURL(kind string, id string) string {
	return fmt.Sprintf("%s/webhooks/%s/%s", c.baseURL, kind, id)
}
