package glofs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Default server-side subsampling strides. They control the point density the
// server returns per field category, not anything client-side.
const (
	DefaultStrideRG   = 4
	DefaultStrideWind = 5
)

// Forecast hour offsets are relative to the run's reference time: a short
// hindcast window plus a five-day forecast window.
const (
	MinHour = -6
	MaxHour = 120
)

// ScopeAll requests latest-run discovery for every lake at once.
const ScopeAll = "all"

// FrameParams are the shared query parameters for single- and multi-lake
// frame fetches. Run is a pointer because "not provided" and "empty string"
// must encode differently: an absent run is omitted from the query entirely
// and the server picks the latest. Zero strides fall back to the defaults.
type FrameParams struct {
	Hour       int
	BBox       BBox
	Run        *string
	StrideRG   int
	StrideWind int
}

// Client issues GLOFS API requests. It is stateless: no caching, no request
// deduplication, no retries. Every call is exactly one GET.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given origin. A trailing slash on the
// base URL is stripped. If httpClient is nil, http.DefaultClient is used and
// the transport's default timeout behaviour applies.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LatestRun resolves the most recent model run per lake. Scope is a single
// lake code or ScopeAll. A lake with no run available maps to a nil pointer,
// mirroring the server's explicit null.
func (c *Client) LatestRun(ctx context.Context, scope string) (map[Lake]*string, error) {
	q := "lake=" + url.QueryEscape(scope)
	body, err := c.get(ctx, "latest_run", q)
	if err != nil {
		return nil, err
	}
	var runs map[Lake]*string
	if err := json.Unmarshal(body, &runs); err != nil {
		return nil, fmt.Errorf("glofs: decode latest_run response: %w", err)
	}
	return runs, nil
}

// FetchFrame fetches one lake's frame at one hour offset. The returned frame
// is trusted as-is: no reshaping, no validation of the sample lists, no
// clipping against the requested bounding box.
func (c *Client) FetchFrame(ctx context.Context, lake Lake, p FrameParams) (*Frame, error) {
	if !lake.Valid() {
		return nil, fmt.Errorf("glofs: unknown lake code %q", lake)
	}
	if err := validateHour(p.Hour); err != nil {
		return nil, err
	}
	q := encodeQuery("lake="+url.QueryEscape(string(lake)), p)
	body, err := c.get(ctx, "frame", q)
	if err != nil {
		return nil, err
	}
	var f Frame
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("glofs: decode frame response: %w", err)
	}
	return &f, nil
}

// FetchFrameMulti fetches frames for several lakes in a single request. Only
// a transport-level failure of the outer request fails the call; individual
// lakes resolve to ok-or-error entries inside the result.
func (c *Client) FetchFrameMulti(ctx context.Context, lakes []Lake, p FrameParams) (MultiFrame, error) {
	if len(lakes) == 0 {
		return nil, fmt.Errorf("glofs: at least one lake is required")
	}
	codes := make([]string, 0, len(lakes))
	for _, l := range lakes {
		if !l.Valid() {
			return nil, fmt.Errorf("glofs: unknown lake code %q", l)
		}
		codes = append(codes, string(l))
	}
	if err := validateHour(p.Hour); err != nil {
		return nil, err
	}
	q := encodeQuery("lakes="+url.QueryEscape(strings.Join(codes, ",")), p)
	body, err := c.get(ctx, "frame_multi", q)
	if err != nil {
		return nil, err
	}
	var mf MultiFrame
	if err := json.Unmarshal(body, &mf); err != nil {
		return nil, fmt.Errorf("glofs: decode frame_multi response: %w", err)
	}
	return mf, nil
}

// encodeQuery builds the query string in the fixed parameter order the server
// expects: lake(s), run (omitted when absent), hour, bbox, strides.
func encodeQuery(lakeParam string, p FrameParams) string {
	strideRG := p.StrideRG
	if strideRG == 0 {
		strideRG = DefaultStrideRG
	}
	strideWind := p.StrideWind
	if strideWind == 0 {
		strideWind = DefaultStrideWind
	}

	parts := make([]string, 0, 6)
	parts = append(parts, lakeParam)
	if p.Run != nil {
		parts = append(parts, "run="+url.QueryEscape(*p.Run))
	}
	parts = append(parts, "hour="+strconv.Itoa(p.Hour))
	parts = append(parts, "bbox="+url.QueryEscape(p.BBox.String()))
	parts = append(parts, "stride_rg="+strconv.Itoa(strideRG))
	parts = append(parts, "stride_wind="+strconv.Itoa(strideWind))
	return strings.Join(parts, "&")
}

func validateHour(hour int) error {
	if hour < MinHour || hour > MaxHour {
		return fmt.Errorf("glofs: hour %d out of range [%d,%d]", hour, MinHour, MaxHour)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, query string) ([]byte, error) {
	u := fmt.Sprintf("%s/api/glofs/%s?%s", c.baseURL, endpoint, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
