package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// OpenAgendaClient is a typed client for the OpenAgenda v2 REST API.
// Requests are throttled: agenda listings fan out into one events call per
// agenda and the API meters by key.
type OpenAgendaClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
	limiter    *rate.Limiter
}

// NewOpenAgendaClient creates a client for the given API key.
func NewOpenAgendaClient(key string) *OpenAgendaClient {
	return &OpenAgendaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.openagenda.com/v2",
		key:        key,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
	}
}

// NewOpenAgendaClientWithBaseURL is used by tests to point at a stub server.
func NewOpenAgendaClientWithBaseURL(key, baseURL string) *OpenAgendaClient {
	client := NewOpenAgendaClient(key)
	client.baseURL = baseURL
	return client
}

// Agenda is one agenda summary from /v2/agendas.
type Agenda struct {
	UID      int64  `json:"uid"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Official int    `json:"official"`
}

// AgendasPage is one page of agenda results.
type AgendasPage struct {
	Agendas []Agenda        `json:"agendas"`
	Total   int             `json:"total"`
	After   json.RawMessage `json:"after"`
}

// AgendaEvent is one event of an agenda, with the fr-localized fields the
// export consumes.
type AgendaEvent struct {
	UID            int64             `json:"uid"`
	Title          map[string]string `json:"title"`
	Description    map[string]string `json:"description"`
	DateRange      map[string]string `json:"dateRange"`
	LastTiming     *EventTiming      `json:"lastTiming"`
	AttendanceMode int               `json:"attendanceMode"`
	Location       *EventLocation    `json:"location"`
	Keywords       map[string][]string `json:"keywords"`
	OriginAgenda   *OriginAgenda     `json:"originAgenda"`
	Image          *EventImage       `json:"image"`
}

// EventTiming is the begin/end pair of an event's last occurrence.
type EventTiming struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// EventLocation is the venue block of an event.
type EventLocation struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OriginAgenda names the agenda an event was published on.
type OriginAgenda struct {
	UID   int64  `json:"uid"`
	Title string `json:"title"`
}

// EventImage is the event illustration; Filename is relative to the public
// image bucket.
type EventImage struct {
	Filename string `json:"filename"`
}

// ImageBucketURL prefixes relative image filenames in exports.
const ImageBucketURL = "https://cibul.s3.amazonaws.com/"

// URL returns the absolute image URL, or "" when there is no image.
func (i *EventImage) URL() string {
	if i == nil || i.Filename == "" {
		return ""
	}
	return ImageBucketURL + i.Filename
}

// EventsPage is one page of event results.
type EventsPage struct {
	Events []AgendaEvent   `json:"events"`
	Total  int             `json:"total"`
	After  json.RawMessage `json:"after"`
}

// AgendaQuery holds the supported /v2/agendas parameters. Zero values are
// omitted from the request.
type AgendaQuery struct {
	Size     int
	Search   string
	Official bool
	Sort     string
}

// ListAgendas fetches one page of agendas matching the query.
func (c *OpenAgendaClient) ListAgendas(ctx context.Context, q AgendaQuery) (*AgendasPage, error) {
	params := url.Values{}
	params.Set("key", c.key)
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Official {
		params.Set("official", "1")
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	var page AgendasPage
	if err := c.get(ctx, "/agendas", params, &page); err != nil {
		return nil, fmt.Errorf("list agendas: %w", err)
	}
	return &page, nil
}

// EventQuery holds the supported per-agenda events parameters.
type EventQuery struct {
	Size        int
	From        int
	Detailed    bool
	Monolingual string
}

// ListEvents fetches one page of events for the given agenda.
func (c *OpenAgendaClient) ListEvents(ctx context.Context, agendaUID int64, q EventQuery) (*EventsPage, error) {
	params := url.Values{}
	params.Set("key", c.key)
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.From > 0 {
		params.Set("from", strconv.Itoa(q.From))
	}
	if q.Detailed {
		params.Set("detailed", "1")
	}
	if q.Monolingual != "" {
		params.Set("monolingual", q.Monolingual)
	}

	var page EventsPage
	if err := c.get(ctx, fmt.Sprintf("/agendas/%d/events", agendaUID), params, &page); err != nil {
		return nil, fmt.Errorf("list events for agenda %d: %w", agendaUID, err)
	}
	return &page, nil
}

// SearchEvents runs one agenda search per term and collects the events of
// every matching agenda. Duplicate agendas across terms are fetched once.
func (c *OpenAgendaClient) SearchEvents(ctx context.Context, terms []string, agendasPerTerm, eventsPerAgenda int) ([]AgendaEvent, error) {
	seen := make(map[int64]struct{})
	var events []AgendaEvent

	for _, term := range terms {
		page, err := c.ListAgendas(ctx, AgendaQuery{
			Size:   agendasPerTerm,
			Search: term,
			Sort:   "createdAt.desc",
		})
		if err != nil {
			return events, err
		}

		for _, agenda := range page.Agendas {
			if _, done := seen[agenda.UID]; done {
				continue
			}
			seen[agenda.UID] = struct{}{}

			eventsPage, err := c.ListEvents(ctx, agenda.UID, EventQuery{Size: eventsPerAgenda})
			if err != nil {
				return events, err
			}
			events = append(events, eventsPage.Events...)
		}
	}
	return events, nil
}

func (c *OpenAgendaClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
