// Package whatsapp provides a simple client for sending text messages
// via the WhatsApp Cloud API.
//
// It allows creating a client with an access token and a phone number
// ID and sending plain text messages to user numbers.
package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client represents a WhatsApp Cloud API client used to send messages.
type Client struct {
	token   string       // access token for authentication
	phoneID string       // sender phone number id
	client  *http.Client // HTTP client used to make requests
}

// NewClient creates a new WhatsApp Client instance with the given
// access token and phone number ID.
func NewClient(token, phoneID string) *Client {
	return &Client{
		token:   token,
		phoneID: phoneID,
		client:  &http.Client{},
	}
}

// sendMessageRequest represents the payload for the Cloud API messages
// endpoint.
type sendMessageRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// Send sends a text message to the specified WhatsApp number.
//
// It constructs the request payload, sends an HTTP POST to the Cloud
// API, and returns an error if the request fails or the API responds
// with a non-2xx status.
func (c *Client) Send(to string, msg string) error {
	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", c.phoneID)

	reqBody := sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: msg},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("whatsapp API error: %s", resp.Status)
	}

	return nil
}
