package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sitepages/internal/domain"
)

// HTTPSource reads items from a JSON HTTP endpoint.
type HTTPSource struct {
	client   *http.Client
	url      string
	headers  map[string]string
	token    string
	dataPath string
	fields   FieldMap
	limiter  *rate.Limiter
}

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	URL       string // {entity} and {count} are substituted
	Headers   map[string]string
	Token     string // sent as a bearer token when set
	DataPath  string
	Fields    FieldMap
	RateLimit float64 // requests per second, 0 = unlimited
	Timeout   time.Duration
}

func NewHTTPSource(opts HTTPOptions) (*HTTPSource, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	s := &HTTPSource{
		client:   &http.Client{Timeout: opts.Timeout},
		url:      opts.URL,
		headers:  opts.Headers,
		token:    opts.Token,
		dataPath: opts.DataPath,
		fields:   opts.Fields.WithDefaults(),
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s, nil
}

func (s *HTTPSource) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, NewSourceError(KindHTTP, "rate limit", entity, err)
		}
	}

	target := strings.NewReplacer(
		"{entity}", url.PathEscape(entity),
		"{count}", strconv.Itoa(count),
	).Replace(s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewSourceError(KindHTTP, "request", entity, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewSourceError(KindHTTP, "request", entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewSourceError(KindHTTP, "request", entity, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, NewSourceError(KindHTTP, "decode", entity, err)
	}
	items, err := itemsFromJSON(raw, s.dataPath, s.fields)
	if err != nil {
		return nil, NewSourceError(KindHTTP, "decode", entity, err)
	}
	return mostRecent(items, count), nil
}
