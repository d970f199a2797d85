package request

import (
	"fmt"
	"strings"
)

const (
	ArcGISTemplate = "{base}/tile/{level}/{row}/{col}"
	XYZTemplate    = "{base}/{level}/{col}/{row}"
	TMSTemplate    = "{base}/1.0.0/{layer}/{level}/{col}/{row}"
)

// Kinds accepted by New.
const (
	KindArcGIS   = "arcgis"
	KindXYZ      = "xyz"
	KindTMS      = "tms"
	KindTemplate = "template"
)

// NewArcGISRequest addresses an ArcGIS tiled map service.
func NewArcGISRequest(baseURL string) *BasicRequest {
	r, _ := NewBasicRequest(ArcGISTemplate, baseURL)
	return r
}

// NewXYZRequest addresses an OSM style {z}/{x}/{y} service. ext may be empty.
func NewXYZRequest(baseURL, ext string) *BasicRequest {
	r, _ := NewBasicRequest(XYZTemplate+suffix(ext), baseURL)
	return r
}

// NewTMSRequest addresses one layer of a TMS 1.0.0 service.
func NewTMSRequest(baseURL, layer, ext string) *BasicRequest {
	t := strings.ReplaceAll(TMSTemplate, "{layer}", layer) + suffix(ext)
	r, _ := NewBasicRequest(t, baseURL)
	return r
}

// New picks a request by kind. template is only used for KindTemplate, layer
// only for KindTMS.
func New(kind, baseURL, template, layer, ext string, subdomains ...string) (Request, error) {
	switch strings.ToLower(kind) {
	case KindArcGIS:
		return NewArcGISRequest(baseURL), nil
	case KindXYZ:
		return NewXYZRequest(baseURL, ext), nil
	case KindTMS:
		if layer == "" {
			return nil, fmt.Errorf("%w: tms request needs a layer", ErrInvalidTemplate)
		}
		return NewTMSRequest(baseURL, layer, ext), nil
	case KindTemplate:
		return NewBasicRequest(template, baseURL, subdomains...)
	default:
		return nil, fmt.Errorf("unknown request kind %q", kind)
	}
}

func suffix(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}
