// Package csvsource reads equipment inventories from CSV files and turns
// rows into rack items.
//
// Two header schemas are understood: the full inventory export with
// asset id, area, zone, purpose, name, model, height, room, cabinet,
// position, and vendor columns, and a legacy export with a reduced
// column set. Detection is automatic unless the schema is forced in the
// Config. Files may be UTF-8 or GB18030/GBK encoded; the decoder falls
// back automatically when the input is not valid UTF-8.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
)

// Schema names accepted by Config.Schema.
const (
	SchemaAuto   = ""       // detect from the header row
	SchemaFull   = "full"   // complete inventory export
	SchemaLegacy = "legacy" // reduced legacy export
)

// Canonical column names used internally after header mapping.
const (
	colAssetID  = "asset_id"
	colArea     = "area"
	colZone     = "zone"
	colPurpose  = "purpose"
	colName     = "name"
	colModel    = "model"
	colHeight   = "height"
	colRoom     = "room"
	colCabinet  = "cabinet"
	colPosition = "position"
	colVendor   = "vendor"
	colNote     = "note"
)

// fullSchema maps the full export's headers onto canonical columns.
var fullSchema = map[string]string{
	"asset id":   colAssetID,
	"area":       colArea,
	"zone":       colZone,
	"purpose":    colPurpose,
	"name":       colName,
	"device":     colName,
	"model":      colModel,
	"height":     colHeight,
	"room":       colRoom,
	"cabinet":    colCabinet,
	"position":   colPosition,
	"u":          colPosition,
	"u position": colPosition,
	"vendor":     colVendor,
	"note":       colNote,
}

// legacySchema maps the legacy export's headers onto canonical columns.
var legacySchema = map[string]string{
	"serial":     colAssetID,
	"no":         colAssetID,
	"name":       colName,
	"device":     colName,
	"model":      colModel,
	"height":     colHeight,
	"type":       colPurpose,
	"cabinet no": colCabinet,
	"cabinet":    colCabinet,
	"position":   colPosition,
	"u":          colPosition,
}

// requiredColumns must resolve for a load to proceed at all.
var requiredColumns = []string{colAssetID, colName, colHeight, colCabinet, colPosition}

// Config controls header mapping and row defaults.
type Config struct {
	Schema string // SchemaAuto, SchemaFull, or SchemaLegacy

	// Defaults fill columns the legacy schema lacks.
	DefaultArea   string
	DefaultZone   string
	DefaultRoom   string
	DefaultVendor string
}

// DefaultConfig returns the standard source configuration.
func DefaultConfig() Config {
	return Config{
		DefaultArea:   "default-area",
		DefaultZone:   "default-zone",
		DefaultRoom:   "default-room",
		DefaultVendor: "unknown",
	}
}

// Result carries the loaded items together with row-level diagnostics.
type Result struct {
	Items   []*rack.Item
	Schema  string   // detected or forced schema
	Skipped int      // blank rows and rows missing cabinet/position
	Errors  []string // row-scoped validation errors, "row N: ..."
}

// Load reads a CSV file from disk. See Parse for the semantics.
func Load(path string, cfg Config) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, cfg)
}

// Parse reads an inventory from r. Structural problems (unreadable CSV,
// unknown schema, missing required columns) fail the load; row-level
// problems skip the row and are collected in Result.Errors.
func Parse(r io.Reader, cfg Config) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read inventory")
	}
	decoded, err := decode(raw)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(decoded))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse CSV")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "inventory is empty")
	}

	header := records[0]
	schema, mapping, err := resolveSchema(header, cfg.Schema)
	if err != nil {
		return nil, err
	}

	index, err := columnIndex(header, mapping)
	if err != nil {
		return nil, err
	}

	res := &Result{Schema: schema}
	for i, row := range records[1:] {
		rowNum := i + 2 // 1-based, counting the header

		if blank(row) {
			res.Skipped++
			continue
		}
		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}
		// Rows without a cabinet or slot cannot be placed at all.
		if cell(colCabinet) == "" || cell(colPosition) == "" {
			res.Skipped++
			continue
		}

		it, err := buildItem(cell, cfg)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNum, errors.UserMessage(err)))
			continue
		}
		res.Items = append(res.Items, it)
	}

	return res, nil
}

// buildItem converts one mapped row into a validated item.
func buildItem(cell func(string) string, cfg Config) (*rack.Item, error) {
	height, err := ParseHeight(cell(colHeight))
	if err != nil {
		return nil, err
	}
	pos, err := ParsePosition(cell(colPosition))
	if err != nil {
		return nil, err
	}

	return rack.NewItem(rack.Item{
		AssetID:  cell(colAssetID),
		Area:     fallback(cell(colArea), cfg.DefaultArea),
		Zone:     fallback(cell(colZone), cfg.DefaultZone),
		Purpose:  NormalizePurpose(cell(colPurpose)),
		Name:     cell(colName),
		Model:    cell(colModel),
		Height:   height,
		Room:     fallback(cell(colRoom), cfg.DefaultRoom),
		Cabinet:  cell(colCabinet),
		Position: pos,
		Vendor:   fallback(cell(colVendor), cfg.DefaultVendor),
		Note:     cell(colNote),
	})
}

// resolveSchema picks the header mapping, either forced or detected.
func resolveSchema(header []string, forced string) (string, map[string]string, error) {
	switch forced {
	case SchemaFull:
		return SchemaFull, fullSchema, nil
	case SchemaLegacy:
		return SchemaLegacy, legacySchema, nil
	case SchemaAuto:
		if name, mapping := detect(header); name != "" {
			return name, mapping, nil
		}
		return "", nil, errors.New(errors.ErrCodeInvalidSchema,
			"unrecognized column layout: %s", strings.Join(header, ", "))
	default:
		return "", nil, errors.New(errors.ErrCodeInvalidSchema, "unknown schema: %q", forced)
	}
}

// detect matches the header row against the known schemas.
// The full schema wins when both match.
func detect(header []string) (string, map[string]string) {
	headers := make(map[string]bool, len(header))
	for _, h := range header {
		headers[normalizeHeader(h)] = true
	}
	if headers["asset id"] && headers["room"] && headers["cabinet"] {
		return SchemaFull, fullSchema
	}
	if (headers["serial"] || headers["no"]) && (headers["cabinet no"] || headers["cabinet"]) {
		return SchemaLegacy, legacySchema
	}
	return "", nil
}

// columnIndex maps canonical column names to positions in the header row
// and checks that every required column resolved.
func columnIndex(header []string, mapping map[string]string) (map[string]int, error) {
	index := make(map[string]int)
	for i, h := range header {
		if col, ok := mapping[normalizeHeader(h)]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidSchema,
			"missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// decode returns the file content as UTF-8, transcoding from GB18030
// (a superset of GBK and GB2312) when the raw bytes are not valid UTF-8.
func decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err,
			"inventory is neither valid UTF-8 nor GB18030")
	}
	return string(decoded), nil
}

// uintPattern extracts the numeric part of slot and height cells.
var uintPattern = regexp.MustCompile(`(\d+)`)

// ParsePosition parses a slot cell such as "U5", "5U", or "5".
func ParsePosition(s string) (int, error) {
	n, err := parseUnits(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidPosition, "cannot parse position %q", s)
	}
	return n, nil
}

// ParseHeight parses a height cell such as "2U", "U2", or "2".
func ParseHeight(s string) (int, error) {
	n, err := parseUnits(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cannot parse height %q", s)
	}
	return n, nil
}

func parseUnits(s string) (int, error) {
	m := uintPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid unit count %q", s)
	}
	return n, nil
}

// normalizeHeader lowercases a header cell and collapses separators so
// that "Cabinet_No", "cabinet no", and "Cabinet-No" all match.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// blank reports whether every cell in the row is empty.
func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
