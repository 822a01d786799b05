package mesh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Decoder fetches and decodes the mesh at url.
type Decoder interface {
	Decode(ctx context.Context, url string) (*Data, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, url string) (*Data, error)

func (f DecoderFunc) Decode(ctx context.Context, url string) (*Data, error) {
	return f(ctx, url)
}

// ErrNoPositions is returned for meshes without a position attribute.
var ErrNoPositions = errors.New("mesh has no position attribute")

// HTTPDecoder loads buffer-geometry JSON over HTTP.
// Relative URLs are resolved against BaseURL.
type HTTPDecoder struct {
	BaseURL string
	Client  *http.Client
}

// ResolveURL joins path onto base unless path is already absolute.
func ResolveURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (d *HTTPDecoder) Decode(ctx context.Context, url string) (*Data, error) {
	full := ResolveURL(d.BaseURL, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch mesh %s: %w", full, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch mesh %s: bad status: %s", full, resp.Status)
	}

	data, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode mesh %s: %w", full, err)
	}
	data.URL = url
	return data, nil
}

type rangeJSON struct {
	// json matching is case-insensitive, so MinValue and minValue both land here.
	MinValue *float64 `json:"minValue"`
	MaxValue *float64 `json:"maxValue"`
}

type geometryJSON struct {
	Data struct {
		Attributes map[string]*Attribute `json:"attributes"`
		UserData   map[string]rangeJSON  `json:"userData"`
	} `json:"data"`
	UserData map[string]rangeJSON `json:"userData"`
}

// Parse decodes buffer-geometry JSON: attributes under data.attributes,
// per-attribute {minValue,maxValue} under userData (top level or data.userData).
func Parse(r io.Reader) (*Data, error) {
	var g geometryJSON
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, err
	}

	pos, ok := g.Data.Attributes["position"]
	if !ok || pos == nil {
		return nil, ErrNoPositions
	}

	attrs := make(map[string]*Attribute, len(g.Data.Attributes))
	for name, a := range g.Data.Attributes {
		if a == nil {
			continue
		}
		if a.ItemSize <= 0 || len(a.Array)%a.ItemSize != 0 {
			return nil, fmt.Errorf("attribute %s: %d values do not fit item size %d", name, len(a.Array), a.ItemSize)
		}
		attrs[name] = a
	}
	if n := pos.Count(); n > 0 {
		for name, a := range attrs {
			if a.Count() != n {
				return nil, fmt.Errorf("attribute %s: %d items, want %d", name, a.Count(), n)
			}
		}
	}

	ranges := make(map[string]Range)
	for _, ud := range []map[string]rangeJSON{g.Data.UserData, g.UserData} {
		for name, rj := range ud {
			if rj.MinValue == nil || rj.MaxValue == nil {
				continue
			}
			ranges[name] = Range{Min: *rj.MinValue, Max: *rj.MaxValue}
		}
	}

	return NewData("", attrs, ranges), nil
}
