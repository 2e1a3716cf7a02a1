package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RegionResolver maps a postal code to a region name. The adapter treats it
// as a read-only collaborator; implementations must return ok=false rather
// than an error when the code is unknown.
type RegionResolver interface {
	Region(ctx context.Context, postalCode string) (string, bool)
}

// NopRegionResolver never resolves anything. Used when the address graph
// alone must decide the region.
type NopRegionResolver struct{}

func (NopRegionResolver) Region(context.Context, string) (string, bool) { return "", false }

// ZippopotamClient resolves French postal codes through the zippopotam.us
// API. Responses are cached in memory: feeds repeat the same handful of
// postal codes thousands of times per run.
type ZippopotamClient struct {
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
}

// NewZippopotamClient creates a resolver with a 24h lookup cache.
func NewZippopotamClient() *ZippopotamClient {
	return &ZippopotamClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.zippopotam.us/fr",
		cache:      gocache.New(24*time.Hour, time.Hour),
	}
}

// NewZippopotamClientWithBaseURL is used by tests to point at a stub server.
func NewZippopotamClientWithBaseURL(baseURL string) *ZippopotamClient {
	client := NewZippopotamClient()
	client.baseURL = baseURL
	return client
}

type zippopotamResponse struct {
	Places []struct {
		State string `json:"state"`
	} `json:"places"`
}

// Region implements RegionResolver. Lookup failures resolve to ok=false and
// are cached too, so a dead endpoint does not stall the whole batch.
func (z *ZippopotamClient) Region(ctx context.Context, postalCode string) (string, bool) {
	if postalCode == "" {
		return "", false
	}
	if cached, found := z.cache.Get(postalCode); found {
		region := cached.(string)
		return region, region != ""
	}

	region := z.lookup(ctx, postalCode)
	z.cache.Set(postalCode, region, gocache.DefaultExpiration)
	return region, region != ""
}

func (z *ZippopotamClient) lookup(ctx context.Context, postalCode string) string {
	url := fmt.Sprintf("%s/%s", z.baseURL, postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	var decoded zippopotamResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}
	if len(decoded.Places) == 0 {
		return ""
	}
	return decoded.Places[0].State
}
