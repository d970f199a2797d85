// Package request builds tile locators from URL templates.
//
// A template may use the placeholders {base}, {level} (or {z}), {row} (or {y}),
// {col} (or {x}) and {s} for a subdomain. Level, row and col are required.
package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaennil/brutile/internal/tiling"
)

var ErrInvalidTemplate = errors.New("invalid locator template")

// Request turns a tile index into a fetchable locator.
type Request interface {
	Locator(index tiling.TileIndex) string
}

func ValidateTemplate(template string) error {
	required := [][2]string{{"{level}", "{z}"}, {"{row}", "{y}"}, {"{col}", "{x}"}}
	for _, r := range required {
		if !strings.Contains(template, r[0]) && !strings.Contains(template, r[1]) {
			return fmt.Errorf("%w: placeholder %v not found in %q", ErrInvalidTemplate, r[0], template)
		}
	}
	return nil
}

// BuildLocator substitutes baseURL and the tile index into template.
func BuildLocator(template, baseURL string, index tiling.TileIndex) string {
	return expand(template, strings.TrimRight(baseURL, "/"), "", index)
}

func expand(template, base, sub string, index tiling.TileIndex) string {
	level := strconv.Itoa(index.Level)
	row := strconv.Itoa(index.Row)
	col := strconv.Itoa(index.Col)

	r := strings.NewReplacer(
		"{base}", base,
		"{s}", sub,
		"{level}", level,
		"{z}", level,
		"{row}", row,
		"{y}", row,
		"{col}", col,
		"{x}", col,
	)
	return r.Replace(template)
}

// BasicRequest expands a fixed template. With subdomains set, {s} is picked
// from the tile position so a tile always maps to the same host.
type BasicRequest struct {
	template   string
	baseURL    string
	subdomains []string
}

var _ Request = (*BasicRequest)(nil)

func NewBasicRequest(template, baseURL string, subdomains ...string) (*BasicRequest, error) {
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}
	if strings.Contains(template, "{s}") && len(subdomains) == 0 {
		return nil, fmt.Errorf("%w: {s} used without subdomains", ErrInvalidTemplate)
	}
	return &BasicRequest{
		template:   template,
		baseURL:    strings.TrimRight(baseURL, "/"),
		subdomains: subdomains,
	}, nil
}

func (r *BasicRequest) Locator(index tiling.TileIndex) string {
	sub := ""
	if n := len(r.subdomains); n > 0 {
		i := (index.Col + index.Row) % n
		if i < 0 {
			i += n
		}
		sub = r.subdomains[i]
	}
	return expand(r.template, r.baseURL, sub, index)
}

func (r *BasicRequest) Template() string { return r.template }
func (r *BasicRequest) BaseURL() string  { return r.baseURL }
