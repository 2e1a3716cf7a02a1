package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"festa-events-pipeline/internal/models"
)

// DataTourismeClient fetches a published JSON-LD feed and returns its graph
// records. The webservice URL already embeds the diffuser credentials.
type DataTourismeClient struct {
	httpClient *http.Client
	url        string
}

// NewDataTourismeClient creates a feed client for the given webservice URL.
func NewDataTourismeClient(url string) *DataTourismeClient {
	return &DataTourismeClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		url:        url,
	}
}

type jsonldFeed struct {
	Graph []models.RawEvent `json:"@graph"`
}

// Fetch retrieves the full feed payload and returns the records under its
// "@graph" key. A failed fetch or undecodable body is logged and yields an
// empty graph: the run simply produces zero records for this source.
func (c *DataTourismeClient) Fetch(ctx context.Context) []models.RawEvent {
	graph, err := c.fetch(ctx)
	if err != nil {
		log.Printf("datatourisme: fetch failed: %v", err)
		return nil
	}
	return graph
}

func (c *DataTourismeClient) fetch(ctx context.Context) ([]models.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var feed jsonldFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return feed.Graph, nil
}
