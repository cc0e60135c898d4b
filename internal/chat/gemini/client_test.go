package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteReturnsFirstCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "what is my balance?", req.Contents[0].Parts[0].Text)

		resp := generateResponse{Candidates: []candidate{
			{Content: content{Parts: []part{{Text: "Your balance is 10 BTC."}}}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := New("test-key", server.URL, "")

	reply, err := client.Complete(context.Background(), "what is my balance?")

	require.NoError(t, err)
	assert.Equal(t, "Your balance is 10 BTC.", reply)
}

func TestCompleteReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := New("bad-key", server.URL, "")

	_, err := client.Complete(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCompleteRejectsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{}))
	}))
	defer server.Close()

	client := New("test-key", server.URL, "")

	_, err := client.Complete(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}
