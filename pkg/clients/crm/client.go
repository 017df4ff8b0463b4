package crm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Lead is the payload shape the CRM webhook expects
type Lead struct {
	LeadRef     string          `json:"lead_ref"`
	FinderType  string          `json:"finder_type"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Client defines the interface for notifying the external CRM
type Client interface {
	SendLead(lead Lead) (string, error)
}

type clientImpl struct {
	webhookURL string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new CRM webhook client
func NewClient(webhookURL, apiKey string) Client {
	return &clientImpl{
		webhookURL: webhookURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendLead posts the lead to the CRM webhook and returns the response
// body. One attempt, no retry; the caller records the outcome.
func (c *clientImpl) SendLead(lead Lead) (string, error) {
	jsonPayload, err := json.Marshal(lead)
	if err != nil {
		return "", fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequest("POST", c.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	// Add authentication and content type headers
	if c.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling CRM webhook: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("error from CRM webhook: %s", string(body))
	}

	log.Printf("Delivered lead %s to CRM", lead.LeadRef)
	return string(body), nil
}
