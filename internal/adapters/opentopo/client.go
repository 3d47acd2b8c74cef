// Package opentopo talks to the OpenTopography global DEM API.
package opentopo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

const (
	DefaultEndpoint = "https://portal.opentopography.org/API/globaldem"
	DefaultDataset  = "SRTMGL3"
	DefaultFormat   = "GTiff"
)

// Client implements ports.DEMSource with a single fasthttp GET per call.
type Client struct {
	http     *fasthttp.Client
	endpoint string
	dataset  string
	format   string
}

// New creates a Client. Empty arguments fall back to the package defaults.
func New(endpoint, dataset, format string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if dataset == "" {
		dataset = DefaultDataset
	}
	if format == "" {
		format = DefaultFormat
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "demfetch",
			ReadBufferSize:      16 * 1024,
			MaxIdleConnDuration: 30 * time.Second,
		},
		endpoint: endpoint,
		dataset:  dataset,
		format:   format,
	}
}

// BuildURL builds the request URL for box. Parameter order is fixed:
// demtype, south, north, west, east, outputFormat, API_Key.
func BuildURL(endpoint, dataset, format string, box domain.BoundingBox, apiKey string) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	args.Add("demtype", dataset)
	args.Add("south", FormatDegrees(box.South))
	args.Add("north", FormatDegrees(box.North))
	args.Add("west", FormatDegrees(box.West))
	args.Add("east", FormatDegrees(box.East))
	args.Add("outputFormat", format)
	args.Add("API_Key", apiKey)

	return endpoint + "?" + args.String()
}

// URL builds the request URL for box with the client's settings.
func (c *Client) URL(box domain.BoundingBox, apiKey string) string {
	return BuildURL(c.endpoint, c.dataset, c.format, box, apiKey)
}

// FetchDEM performs one GET and returns the whole body on HTTP 200.
// Any other status, or a transport failure, yields *domain.RequestError.
func (c *Client) FetchDEM(ctx context.Context, box domain.BoundingBox, apiKey string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RequestError{Err: err}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.URL(box, apiKey))
	req.Header.SetMethod(fasthttp.MethodGet)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return nil, &domain.RequestError{Err: fmt.Errorf("GET %s: %w", c.endpoint, err)}
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, &domain.RequestError{StatusCode: status}
	}

	// resp is recycled on return
	return append([]byte(nil), resp.Body()...), nil
}

// FormatDegrees renders v as the shortest decimal that round-trips, always
// with a fractional part: 40 → "40.0", -73.25 → "-73.25".
func FormatDegrees(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
