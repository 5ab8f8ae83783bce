package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/zach2017/oldtownaltour/internal/common"
)

// AppName is written into every export envelope.
const AppName = "Old Alabama Town Tours"

// ExportEnvelope is the JSON/YAML export document. Attachments are reduced
// to per-category counts; their content is never exported.
type ExportEnvelope struct {
	ExportDate     time.Time        `json:"exportDate" yaml:"exportDate"`
	AppName        string           `json:"appName" yaml:"appName"`
	TotalLocations int              `json:"totalLocations" yaml:"totalLocations"`
	Locations      []ExportLocation `json:"locations" yaml:"locations"`
}

// ExportLocation is the projection of a Location used by exports.
type ExportLocation struct {
	BeaconID    string `json:"beaconId" yaml:"beaconId"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	AudioFiles  int    `json:"audioFiles" yaml:"audioFiles"`
	VideoFiles  int    `json:"videoFiles" yaml:"videoFiles"`
	TextFiles   int    `json:"textFiles" yaml:"textFiles"`
}

// NewExportEnvelope projects locations into an export document.
func NewExportEnvelope(locations []Location, exportedAt time.Time) ExportEnvelope {
	out := make([]ExportLocation, 0, len(locations))
	for _, l := range locations {
		out = append(out, ExportLocation{
			BeaconID:    l.BeaconID,
			Name:        l.Name,
			Description: l.Description,
			AudioFiles:  len(l.AudioFiles),
			VideoFiles:  len(l.VideoFiles),
			TextFiles:   len(l.TextFiles),
		})
	}
	return ExportEnvelope{
		ExportDate:     exportedAt,
		AppName:        AppName,
		TotalLocations: len(out),
		Locations:      out,
	}
}

// ImportRecord is an accepted import row.
type ImportRecord struct {
	BeaconID    string
	Name        string
	Description string
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Imported int
	Failed   int
}

// ParseImport decodes an import payload. Two shapes are accepted: a bare
// JSON array of location objects, or an object with a "locations" array.
// Only records whose beaconId and name are both truthy are returned; if
// none are, or the payload has another shape, the error wraps
// common.ErrInvalidInput.
func ParseImport(data []byte) ([]ImportRecord, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", common.ErrInvalidInput, err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		locs, ok := v["locations"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: no locations array found", common.ErrInvalidInput)
		}
		items = locs
	default:
		return nil, fmt.Errorf("%w: unsupported import shape", common.ErrInvalidInput)
	}

	var records []ImportRecord
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !truthy(obj["beaconId"]) || !truthy(obj["name"]) {
			continue
		}
		rec := ImportRecord{
			BeaconID: scalarString(obj["beaconId"]),
			Name:     scalarString(obj["name"]),
		}
		if truthy(obj["description"]) {
			rec.Description = scalarString(obj["description"])
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid locations found", common.ErrInvalidInput)
	}
	return records, nil
}

// truthy mirrors the loose truthiness the dashboard applies to imported
// fields: empty strings, zero, false and null are rejected.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	default:
		return true
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
