// Package hardcover reads books marked as read from the Hardcover GraphQL API.
package hardcover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hasura/go-graphql-client"

	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/sources"
	"github.com/drallgood/abs-cli/internal/util"
)

const (
	// StatusRead is Hardcover's user_book status id for finished books
	StatusRead = 3

	// PageSize is the number of user books requested per query
	PageSize = 100
)

const readBooksQuery = `
query ReadBooks($status: Int!, $limit: Int!, $offset: Int!) {
  me {
    user_books(
      where: {status_id: {_eq: $status}}
      order_by: {id: asc}
      limit: $limit
      offset: $offset
    ) {
      id
      book {
        title
      }
      edition {
        asin
        title
      }
    }
  }
}`

type readBooksResponse struct {
	Me []struct {
		UserBooks []userBook `json:"user_books"`
	} `json:"me"`
}

type userBook struct {
	ID   int `json:"id"`
	Book *struct {
		Title string `json:"title"`
	} `json:"book"`
	Edition *struct {
		ASIN  string `json:"asin"`
		Title string `json:"title"`
	} `json:"edition"`
}

// headerAddingTransport adds the Hardcover authentication headers
type headerAddingTransport struct {
	token string
	rt    http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface.
func (t *headerAddingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", authHeader(t.token))
	req.Header.Set("Content-Type", "application/json")
	return t.rt.RoundTrip(req)
}

// authHeader ensures the token carries the Bearer prefix
func authHeader(token string) string {
	token = strings.TrimSpace(token)
	if token != "" && !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return token
}

// Client reads finished books from Hardcover
type Client struct {
	gql     *graphql.Client
	limiter *util.RateLimiter
	logger  *logger.Logger
}

// NewClient creates a Hardcover client for the GraphQL endpoint at url
func NewClient(url, token string) *Client {
	log := logger.Get().WithFields(map[string]interface{}{
		"component": "hardcover_source",
	})

	authClient := &http.Client{
		Transport: &headerAddingTransport{
			token: token,
			rt:    http.DefaultTransport,
		},
	}

	return &Client{
		gql:     graphql.NewClient(url, authClient),
		limiter: util.NewRateLimiter(util.DefaultRate, 1, log),
		logger:  log,
	}
}

// ReadFinished returns every book the user marked as read. Books whose
// edition has no ASIN cannot be matched and are skipped.
func (c *Client) ReadFinished(ctx context.Context) ([]sources.FinishedRecord, error) {
	var records []sources.FinishedRecord
	skipped := 0

	for offset := 0; ; offset += PageSize {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		books, err := c.page(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, ub := range books {
			if ub.Edition == nil || strings.TrimSpace(ub.Edition.ASIN) == "" {
				skipped++
				continue
			}
			title := ub.Edition.Title
			if ub.Book != nil && ub.Book.Title != "" {
				title = ub.Book.Title
			}
			records = append(records, sources.FinishedRecord{
				CatalogID: strings.TrimSpace(ub.Edition.ASIN),
				Title:     title,
				Source:    sources.SourceHardcover,
			})
		}

		if len(books) < PageSize {
			break
		}
	}

	c.logger.Debug("Read finished books from Hardcover", map[string]interface{}{
		"count":        len(records),
		"without_asin": skipped,
	})
	return records, nil
}

func (c *Client) page(ctx context.Context, offset int) ([]userBook, error) {
	raw, err := c.gql.ExecRaw(ctx, readBooksQuery, map[string]interface{}{
		"status": StatusRead,
		"limit":  PageSize,
		"offset": offset,
	})
	if err != nil {
		return nil, fmt.Errorf("hardcover query failed: %w", err)
	}

	var resp readBooksResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode hardcover response: %w", err)
	}
	if len(resp.Me) == 0 {
		return nil, fmt.Errorf("hardcover returned no user for this token")
	}
	return resp.Me[0].UserBooks, nil
}
