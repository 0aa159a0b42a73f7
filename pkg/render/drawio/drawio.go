// Package drawio renders placement plans as draw.io (mxfile) XML.
//
// Each room becomes its own sheet. A cabinet is drawn as a background
// frame with a one-unit slot grid, an optional slot ruler on the left,
// and one cell per placed device sized to the slots it covers. The
// output opens directly in app.diagrams.net.
package drawio

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
)

// Geometry and style defaults.
const (
	DefaultCabinetWidth  = 200
	DefaultCabinetHeight = 840 // 42 slots at 20px
	DefaultSlotHeight    = 20
	DefaultCabinetGap    = 100
	DefaultSlots         = 42
	DefaultFontSize      = 12
	DefaultTitleFontSize = 16

	defaultTextColor      = "#000000"
	defaultBorderColor    = "#000000"
	defaultGridColor      = "#CCCCCC"
	defaultRoomTitleColor = "#2F5597"
	defaultDeviceColor    = "#E6E6E6"

	originX = 50
	originY = 50
)

// DefaultDeviceColors maps normalized purposes to fill colors.
var DefaultDeviceColors = map[string]string{
	"web":            "#FFE6CC",
	"app":            "#FFF2CC",
	"database":       "#E1D5E7",
	"storage":        "#D5E8D4",
	"network-core":   "#F8CECC",
	"network-access": "#FFCCCC",
	"security":       "#FFCCCC",
	"loadbalancer":   "#E6F3FF",
	"backup":         "#F0F8E6",
	"monitoring":     "#FFF0E6",
	"management":     "#F5F5F5",
	"cache":          "#E6F7FF",
	"power":          "#FFF5E6",
	"other":          "#E6E6E6",
}

// Config controls diagram geometry and styling. The zero value is not
// usable directly; call ValidateAndSetDefaults or start from
// DefaultConfig.
type Config struct {
	CabinetWidth  int
	CabinetHeight int
	SlotHeight    int
	CabinetGap    int
	Slots         int
	FontSize      int
	TitleFontSize int

	TextColor      string
	BorderColor    string
	GridColor      string
	RoomTitleColor string
	DeviceColors   map[string]string
	DefaultColor   string

	ShowRuler     bool
	ShowRoomTitle bool
	ShowAssetID   bool
	Detailed      bool
}

// DefaultConfig returns the standard diagram configuration.
func DefaultConfig() Config {
	return Config{
		CabinetWidth:   DefaultCabinetWidth,
		CabinetHeight:  DefaultCabinetHeight,
		SlotHeight:     DefaultSlotHeight,
		CabinetGap:     DefaultCabinetGap,
		Slots:          DefaultSlots,
		FontSize:       DefaultFontSize,
		TitleFontSize:  DefaultTitleFontSize,
		TextColor:      defaultTextColor,
		BorderColor:    defaultBorderColor,
		GridColor:      defaultGridColor,
		RoomTitleColor: defaultRoomTitleColor,
		DeviceColors:   DefaultDeviceColors,
		DefaultColor:   defaultDeviceColor,
		ShowRuler:      true,
		ShowRoomTitle:  true,
	}
}

// ValidateAndSetDefaults fills zero fields and rejects invalid geometry.
func (c *Config) ValidateAndSetDefaults() error {
	def := DefaultConfig()
	if c.CabinetWidth == 0 {
		c.CabinetWidth = def.CabinetWidth
	}
	if c.SlotHeight == 0 {
		c.SlotHeight = def.SlotHeight
	}
	if c.Slots == 0 {
		c.Slots = def.Slots
	}
	if c.CabinetHeight == 0 {
		c.CabinetHeight = c.Slots * c.SlotHeight
	}
	if c.CabinetGap == 0 {
		c.CabinetGap = def.CabinetGap
	}
	if c.FontSize == 0 {
		c.FontSize = def.FontSize
	}
	if c.TitleFontSize == 0 {
		c.TitleFontSize = def.TitleFontSize
	}
	if c.TextColor == "" {
		c.TextColor = def.TextColor
	}
	if c.BorderColor == "" {
		c.BorderColor = def.BorderColor
	}
	if c.GridColor == "" {
		c.GridColor = def.GridColor
	}
	if c.RoomTitleColor == "" {
		c.RoomTitleColor = def.RoomTitleColor
	}
	if c.DeviceColors == nil {
		c.DeviceColors = DefaultDeviceColors
	}
	if c.DefaultColor == "" {
		c.DefaultColor = def.DefaultColor
	}

	if c.CabinetWidth < 0 || c.SlotHeight < 0 || c.Slots < 0 || c.CabinetGap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "diagram geometry must not be negative")
	}
	if c.CabinetHeight < c.Slots*c.SlotHeight {
		return errors.New(errors.ErrCodeInvalidConfig,
			"cabinet height %d cannot hold %d slots of height %d",
			c.CabinetHeight, c.Slots, c.SlotHeight)
	}
	return nil
}

// deviceColor resolves the fill color for a purpose.
func (c Config) deviceColor(purpose string) string {
	if color, ok := c.DeviceColors[purpose]; ok {
		return color
	}
	return c.DefaultColor
}

// mxfile document structure.

type mxFile struct {
	XMLName  xml.Name    `xml:"mxfile"`
	Host     string      `xml:"host,attr"`
	Agent    string      `xml:"agent,attr"`
	Version  string      `xml:"version,attr"`
	Type     string      `xml:"type,attr"`
	Diagrams []mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Graph mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Dx         string `xml:"dx,attr"`
	Dy         string `xml:"dy,attr"`
	Grid       string `xml:"grid,attr"`
	GridSize   string `xml:"gridSize,attr"`
	Page       string `xml:"page,attr"`
	PageScale  string `xml:"pageScale,attr"`
	PageWidth  string `xml:"pageWidth,attr"`
	PageHeight string `xml:"pageHeight,attr"`
	Root       mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X      int    `xml:"x,attr"`
	Y      int    `xml:"y,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	As     string `xml:"as,attr"`
}

// Renderer turns a plan into mxfile XML.
type Renderer struct {
	cfg    Config
	nextID int
}

// New creates a renderer, applying config defaults.
func New(cfg Config) (*Renderer, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg}, nil
}

// Render produces the complete mxfile document for the plan, one sheet
// per room, cabinets sorted by id within each sheet.
func (r *Renderer) Render(plan *rack.Plan) ([]byte, error) {
	if plan == nil || plan.TotalCabinets() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render: plan has no cabinets")
	}
	r.nextID = 1

	doc := mxFile{
		Host:    "app.diagrams.net",
		Agent:   "rackplan",
		Version: "22.1.11",
		Type:    "device",
	}
	for _, room := range plan.Rooms() {
		doc.Diagrams = append(doc.Diagrams, r.renderRoom(room, plan.CabinetsByRoom(room)))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal diagram")
	}
	return append([]byte(xml.Header), out...), nil
}

func (r *Renderer) renderRoom(room string, cabinets []*rack.Cabinet) mxDiagram {
	root := mxRoot{Cells: []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}}

	if r.cfg.ShowRoomTitle && len(cabinets) > 0 {
		width := len(cabinets)*(r.cfg.CabinetWidth+r.cfg.CabinetGap) - r.cfg.CabinetGap
		root.Cells = append(root.Cells, mxCell{
			ID:    r.id(),
			Value: "Room " + room,
			Style: fmt.Sprintf("text;html=1;strokeColor=none;fillColor=none;"+
				"align=center;verticalAlign=middle;whiteSpace=wrap;rounded=0;"+
				"fontSize=%d;fontColor=%s;fontStyle=1",
				r.cfg.TitleFontSize, r.cfg.RoomTitleColor),
			Vertex:   "1",
			Parent:   "1",
			Geometry: &mxGeometry{X: originX, Y: originY - 70, Width: width, Height: 30, As: "geometry"},
		})
	}

	x := originX
	for _, cab := range cabinets {
		root.Cells = append(root.Cells, r.renderCabinet(cab, x, originY)...)
		x += r.cfg.CabinetWidth + r.cfg.CabinetGap
	}

	return mxDiagram{
		ID:   r.id(),
		Name: room,
		Graph: mxGraphModel{
			Dx: "1426", Dy: "827",
			Grid: "1", GridSize: "10",
			Page: "1", PageScale: "1",
			PageWidth: "827", PageHeight: "1169",
			Root: root,
		},
	}
}

// renderCabinet emits the frame, grid, ruler, devices, and title cells
// for one cabinet at (x, y).
func (r *Renderer) renderCabinet(cab *rack.Cabinet, x, y int) []mxCell {
	var cells []mxCell

	// The frame spans from the top of the highest slot to the bottom of
	// slot 1.
	topY := y + r.cfg.CabinetHeight - r.cfg.Slots*r.cfg.SlotHeight - r.cfg.SlotHeight
	frameHeight := (r.cfg.Slots + 1) * r.cfg.SlotHeight

	cells = append(cells, mxCell{
		ID: r.id(),
		Style: fmt.Sprintf("rounded=0;whiteSpace=wrap;html=1;fillColor=#FFFFFF;"+
			"strokeColor=%s;strokeWidth=2", r.cfg.BorderColor),
		Vertex:   "1",
		Parent:   "1",
		Geometry: &mxGeometry{X: x, Y: topY, Width: r.cfg.CabinetWidth, Height: frameHeight, As: "geometry"},
	})

	gridStyle := fmt.Sprintf("rounded=0;whiteSpace=wrap;html=1;strokeColor=%s;"+
		"fillColor=none;strokeWidth=1", r.cfg.GridColor)
	for u := 1; u <= r.cfg.Slots; u++ {
		cells = append(cells, mxCell{
			ID:     r.id(),
			Style:  gridStyle,
			Vertex: "1",
			Parent: "1",
			Geometry: &mxGeometry{
				X:      x,
				Y:      r.slotTop(y, u),
				Width:  r.cfg.CabinetWidth,
				Height: r.cfg.SlotHeight,
				As:     "geometry",
			},
		})
	}

	if r.cfg.ShowRuler {
		rulerStyle := fmt.Sprintf("text;html=1;strokeColor=none;fillColor=none;"+
			"align=right;verticalAlign=bottom;whiteSpace=wrap;rounded=0;"+
			"fontSize=8;fontColor=%s", r.cfg.TextColor)
		for u := 1; u <= r.cfg.Slots; u++ {
			cells = append(cells, mxCell{
				ID:     r.id(),
				Value:  "U" + strconv.Itoa(u),
				Style:  rulerStyle,
				Vertex: "1",
				Parent: "1",
				Geometry: &mxGeometry{
					X:      x - 30,
					Y:      r.slotTop(y, u),
					Width:  25,
					Height: r.cfg.SlotHeight,
					As:     "geometry",
				},
			})
		}
	}

	for _, it := range cab.Items() {
		cells = append(cells, r.renderDevice(it, x, y))
	}

	cells = append(cells, mxCell{
		ID:    r.id(),
		Value: cab.Cabinet,
		Style: fmt.Sprintf("text;html=1;strokeColor=none;fillColor=none;"+
			"align=center;verticalAlign=middle;whiteSpace=wrap;rounded=0;"+
			"fontSize=%d;fontColor=%s;fontStyle=1", r.cfg.FontSize, r.cfg.TextColor),
		Vertex:   "1",
		Parent:   "1",
		Geometry: &mxGeometry{X: x, Y: topY - 30, Width: r.cfg.CabinetWidth, Height: 20, As: "geometry"},
	})

	return cells
}

// renderDevice emits one device cell covering its slot range exactly.
func (r *Renderer) renderDevice(it *rack.Item, cabX, cabY int) mxCell {
	// Top edge sits at the top of the item's highest slot.
	top := cabY + r.cfg.CabinetHeight - (it.EndPosition()+1)*r.cfg.SlotHeight

	label := it.Label(r.cfg.Detailed)
	if r.cfg.ShowAssetID && it.AssetID != "" {
		label = it.AssetID + "\n" + label
	}

	return mxCell{
		ID:    r.id(),
		Value: label,
		Style: fmt.Sprintf("rounded=0;whiteSpace=wrap;html=1;fillColor=%s;"+
			"strokeColor=%s;strokeWidth=1;fontSize=%d;fontColor=%s;"+
			"align=center;verticalAlign=middle",
			r.cfg.deviceColor(it.Purpose), r.cfg.BorderColor, r.cfg.FontSize, r.cfg.TextColor),
		Vertex: "1",
		Parent: "1",
		Geometry: &mxGeometry{
			X:      cabX,
			Y:      top,
			Width:  r.cfg.CabinetWidth,
			Height: it.Height * r.cfg.SlotHeight,
			As:     "geometry",
		},
	}
}

// slotTop returns the Y coordinate of slot u's top edge. Slot 1 is at
// the bottom of the cabinet.
func (r *Renderer) slotTop(cabY, u int) int {
	return cabY + r.cfg.CabinetHeight - u*r.cfg.SlotHeight - r.cfg.SlotHeight
}

func (r *Renderer) id() string {
	id := strconv.Itoa(r.nextID)
	r.nextID++
	return id
}

// FileExtension is the conventional extension for mxfile output.
const FileExtension = ".drawio"

// SheetNames lists the sheet names that Render would emit, in order.
func SheetNames(plan *rack.Plan) []string {
	if plan == nil {
		return nil
	}
	return plan.Rooms()
}
