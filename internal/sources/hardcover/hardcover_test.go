package hardcover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drallgood/abs-cli/internal/sources"
)

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func userBooks(books ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"me": []map[string]interface{}{{"user_books": books}},
		},
	}
}

func TestReadFinished(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hc-token", r.Header.Get("Authorization"))

		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "user_books")
		assert.EqualValues(t, StatusRead, req.Variables["status"])
		assert.EqualValues(t, 0, req.Variables["offset"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userBooks(
			map[string]interface{}{"id": 1, "book": map[string]string{"title": "Project Hail Mary"}, "edition": map[string]string{"asin": "B08FHBV4ZX", "title": "PHM (Audio)"}},
			map[string]interface{}{"id": 2, "book": map[string]string{"title": "Paper Only"}, "edition": map[string]interface{}{"asin": nil}},
			map[string]interface{}{"id": 3, "book": map[string]string{"title": "No Edition"}, "edition": nil},
			map[string]interface{}{"id": 4, "book": nil, "edition": map[string]string{"asin": " B0001 ", "title": "Edition Title"}},
		))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, "hc-token").ReadFinished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []sources.FinishedRecord{
		{CatalogID: "B08FHBV4ZX", Title: "Project Hail Mary", Source: sources.SourceHardcover},
		{CatalogID: "B0001", Title: "Edition Title", Source: sources.SourceHardcover},
	}, records)
}

func TestReadFinishedPages(t *testing.T) {
	var offsets []float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		offset := req.Variables["offset"].(float64)
		offsets = append(offsets, offset)

		n := PageSize
		if offset > 0 {
			n = 3
		}
		books := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			books = append(books, map[string]interface{}{
				"id":      int(offset) + i,
				"book":    map[string]string{"title": fmt.Sprintf("Book %d", int(offset)+i)},
				"edition": map[string]string{"asin": fmt.Sprintf("A%d", int(offset)+i)},
			})
		}
		_ = json.NewEncoder(w).Encode(userBooks(books...))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, "Bearer already-prefixed").ReadFinished(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, PageSize+3)
	assert.Equal(t, []float64{0, PageSize}, offsets)
}

func TestReadFinishedErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "graphql error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"errors":[{"message":"invalid token"}]}`))
			},
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			},
		},
		{
			name: "no user",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":{"me":[]}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			records, err := NewClient(server.URL, "token").ReadFinished(context.Background())
			assert.Error(t, err)
			assert.Nil(t, records)
		})
	}
}

func TestAuthHeader(t *testing.T) {
	assert.Equal(t, "Bearer abc", authHeader("abc"))
	assert.Equal(t, "Bearer abc", authHeader(" Bearer abc "))
	assert.Equal(t, "", authHeader(""))
}
