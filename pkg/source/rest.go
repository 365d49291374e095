package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 10 * time.Second

// REST talks to the campus-services HTTP backend.
type REST struct {
	BaseURL string
	Client  *http.Client
	Logger  *log.Logger
}

// NewREST returns a REST backend rooted at baseURL.
func NewREST(baseURL string, timeout time.Duration, logger *log.Logger) (*REST, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("source: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("source: base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &REST{
		BaseURL: strings.TrimRight(u.String(), "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}, nil
}

var _ Backend = (*REST)(nil)

func (r *REST) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

func (r *REST) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

func (r *REST) endpointURL(endpoint string, query url.Values) string {
	u := r.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Fetch implements Source. Server-paged requests carry page and limit.
func (r *REST) Fetch(ctx context.Context, req Request) (Result, error) {
	var query url.Values
	if req.ServerPaged {
		query = url.Values{}
		query.Set("page", strconv.Itoa(max(req.Page, 1)))
		if req.PageSize > 0 {
			query.Set("limit", strconv.Itoa(req.PageSize))
		}
	}
	target := r.endpointURL(req.Endpoint, query)
	body, err := r.do(ctx, http.MethodGet, req.Endpoint, target, nil)
	if err != nil {
		return Result{}, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, &FetchError{Endpoint: req.Endpoint, Message: "malformed response from server", Err: err}
	}
	r.logger().Debug("fetched collection", "endpoint", req.Endpoint, "records", len(env.Data))
	return Result{Records: env.Data, Pagination: env.Pagination}, nil
}

// Delete implements Mutator.
func (r *REST) Delete(ctx context.Context, endpoint, id string) error {
	if id == "" {
		return fmt.Errorf("source: delete from %s: empty id", endpoint)
	}
	target := r.endpointURL(endpoint+"/"+url.PathEscape(id), nil)
	_, err := r.do(ctx, http.MethodDelete, endpoint, target, nil)
	return err
}

// Update implements Mutator with a PATCH of the given fields.
func (r *REST) Update(ctx context.Context, endpoint, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("source: update in %s: empty id", endpoint)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("source: encode update: %w", err)
	}
	target := r.endpointURL(endpoint+"/"+url.PathEscape(id), nil)
	_, err = r.do(ctx, http.MethodPatch, endpoint, target, payload)
	return err
}

func (r *REST) do(ctx context.Context, method, endpoint, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client().Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &FetchError{Endpoint: endpoint, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode == http.StatusNotFound && method != http.MethodGet {
		return nil, fmt.Errorf("source: %s %s: %w", method, endpoint, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		r.logger().Debug("backend error", "method", method, "endpoint", endpoint, "status", resp.StatusCode)
		return nil, &FetchError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}
