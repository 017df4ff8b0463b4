package crm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLead(t *testing.T) {
	var received Lead
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"crm_id":"L-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	body, err := client.SendLead(Lead{
		LeadRef:     "abc123def456",
		FinderType:  "agent",
		Name:        "Jane Miller",
		Email:       "jane@example.com",
		Phone:       "3035550142",
		SubmittedAt: time.Now().UTC(),
		Payload:     json.RawMessage(`{"transaction_type":"buy"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, `{"crm_id":"L-42"}`, body)
	assert.Equal(t, "abc123def456", received.LeadRef)
	assert.Equal(t, "agent", received.FinderType)
}

func TestSendLeadNoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.SendLead(Lead{LeadRef: "x"})
	assert.NoError(t, err)
}

func TestSendLeadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	_, err := client.SendLead(Lead{LeadRef: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream broken")
}

func TestSendLeadConnectionError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "key")
	_, err := client.SendLead(Lead{LeadRef: "x"})
	assert.Error(t, err)
}
