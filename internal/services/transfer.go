package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/models"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var csvHeader = []string{"Beacon ID", "Name", "Description", "Audio Files", "Video Files", "Text Files"}

// ParseFormat accepts a format name as typed by a user.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", common.ErrInvalidInput, s)
}

// FormatFromPath picks the import format from a file extension; anything
// that is not YAML is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// WriteExport encodes env to w.
func WriteExport(w io.Writer, env models.ExportEnvelope, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)

	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, l := range env.Locations {
			row := []string{
				l.BeaconID,
				l.Name,
				l.Description,
				strconv.Itoa(l.AudioFiles),
				strconv.Itoa(l.VideoFiles),
				strconv.Itoa(l.TextFiles),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("%w: unknown format %q", common.ErrInvalidInput, format)
}

// DecodeImport parses an import payload in the given format. YAML is
// converted to JSON and then read with the same rules.
func DecodeImport(data []byte, format Format) ([]models.ImportRecord, error) {
	if format == FormatYAML {
		j, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed YAML: %v", common.ErrInvalidInput, err)
		}
		data = j
	}
	return models.ParseImport(data)
}
