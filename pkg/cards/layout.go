package cards

import (
	"image"
	"image/color"
)

// Anchor positions text relative to its point the way the artwork was designed: AX is the
// horizontal fraction of the text width left of the point, AY the vertical fraction of the
// line height above it.
type Anchor struct {
	AX float64
	AY float64
}

//nolint:gochecknoglobals
var (
	AnchorLeftMiddle   = Anchor{AX: 0, AY: 0.5}
	AnchorRightMiddle  = Anchor{AX: 1, AY: 0.5}
	AnchorMiddleMiddle = Anchor{AX: 0.5, AY: 0.5}
)

// Box places an image. A zero W or H keeps the image's own size.
type Box struct {
	X, Y int
	W, H int
}

// Offset returns the box moved by p.
func (b Box) Offset(p image.Point) Box {
	return Box{X: b.X + p.X, Y: b.Y + p.Y, W: b.W, H: b.H}
}

// Point returns the box origin.
func (b Box) Point() image.Point {
	return image.Pt(b.X, b.Y)
}

// Sized reports whether the image must be resized to fit the box.
func (b Box) Sized() bool {
	return b.W > 0 && b.H > 0
}

// TextSlot places a run of text.
type TextSlot struct {
	X, Y   float64
	Size   float64
	Font   FontRole
	Anchor Anchor
}

// Offset returns the slot moved by p.
func (t TextSlot) Offset(p image.Point) TextSlot {
	t.X += float64(p.X)
	t.Y += float64(p.Y)
	return t
}

// Grid lays out tiles left to right then top to bottom.
type Grid struct {
	OriginX int
	Columns int
	StepX   int
	StepY   int
}

// Cell returns the top-left corner of tile index when the first row starts at top.
func (g Grid) Cell(index int, top int) image.Point {
	return image.Pt(g.OriginX+(index%g.Columns)*g.StepX, top+(index/g.Columns)*g.StepY)
}

// DigitLayout places the rating digit sprites. Positions 0 and 1 use the large sprites, 2 is
// the decimal point and everything after uses the small sprites.
type DigitLayout struct {
	SheetCell  image.Point
	Large      Box
	LargeStep  int
	Point      Box
	Small      Box
	SmallStep  int
	PointCell  int
	SheetWidth int
}

// HeaderLayout places the player summary at the top of the card.
type HeaderLayout struct {
	Logo          Box
	Plate         Box
	IconFrame     Box
	AvatarBacking Box
	Avatar        Box
	RatingHeader  Box
	NameFrame     Box
	LevelFrame    Box
	SummaryFrame  Box
	Digits        DigitLayout

	Level   TextSlot
	Name    TextSlot
	Summary TextSlot

	LevelColor         color.NRGBA
	NameColor          color.NRGBA
	SummaryColor       color.NRGBA
	SummaryStroke      int
	SummaryStrokeColor color.NRGBA
}

// TileLayout holds offsets relative to a tile's grid cell.
type TileLayout struct {
	Difficulty image.Point
	Cover      Box
	Index      TextSlot
	Version    TextSlot
	Title      TextSlot
	Score      TextSlot
	Judgements TextSlot
	Rating     TextSlot
}

// Layout is the complete pixel placement of a card.
type Layout struct {
	Canvas image.Point
	Output image.Point
	Header HeaderLayout
	Grid   Grid
	Tile   TileLayout
	// ListTops is the y of the first row of the best and best-new grids.
	ListTops [2]int
}

// Title truncation, in display columns.
const (
	TitleThreshold = 20
	TitleBudget    = 19
	TitleEllipsis  = "..."
)

//nolint:gochecknoglobals
var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

func baseHeader() HeaderLayout {
	return HeaderLayout{
		Plate:         Box{X: 390, Y: 100, W: 1420, H: 230},
		IconFrame:     Box{X: 398, Y: 108, W: 214, H: 214},
		AvatarBacking: Box{X: 404, Y: 114, W: 203, H: 203},
		Avatar:        Box{X: 405, Y: 115, W: 201, H: 201},
		RatingHeader:  Box{X: 620, Y: 280, W: 158, H: 42},
		NameFrame:     Box{X: 750, Y: 185},
		LevelFrame:    Box{X: 620, Y: 180},
		SummaryFrame:  Box{X: 620, Y: 120, W: 454, H: 50},
		Digits: DigitLayout{
			SheetCell:  image.Pt(34, 37),
			SheetWidth: 4,
			Large:      Box{X: 760, Y: 252, W: 68, H: 74},
			LargeStep:  50,
			Point:      Box{X: 858, Y: 271, W: 45, H: 49},
			PointCell:  12,
			Small:      Box{X: 790, Y: 271, W: 45, H: 49},
			SmallStep:  30,
		},
		Level:              TextSlot{X: 682, Y: 226, Size: 56, Font: FontLevel, Anchor: AnchorLeftMiddle},
		Name:               TextSlot{X: 774, Y: 217, Size: 40, Font: FontTitle, Anchor: AnchorLeftMiddle},
		Summary:            TextSlot{X: 847, Y: 141, Size: 28, Font: FontNumbers, Anchor: AnchorMiddleMiddle},
		LevelColor:         color.NRGBA{R: 255, G: 255, B: 255, A: 200},
		NameColor:          black,
		SummaryColor:       black,
		SummaryStroke:      3,
		SummaryStrokeColor: white,
	}
}

func baseTile() TileLayout {
	return TileLayout{
		Cover:      Box{X: 5, Y: 5, W: 135, H: 135},
		Index:      TextSlot{X: 8, Y: 149, Size: 18, Font: FontTitle, Anchor: AnchorLeftMiddle},
		Version:    TextSlot{X: 136, Y: 149, Size: 18, Font: FontTitle, Anchor: AnchorRightMiddle},
		Title:      TextSlot{X: 152, Y: 20, Size: 20, Font: FontTitle, Anchor: AnchorLeftMiddle},
		Score:      TextSlot{X: 152, Y: 56, Size: 38, Font: FontNumbers, Anchor: AnchorLeftMiddle},
		Judgements: TextSlot{X: 342, Y: 132, Size: 22, Font: FontNumbers, Anchor: AnchorMiddleMiddle},
		Rating:     TextSlot{X: 152, Y: 132, Size: 22, Font: FontNumbers, Anchor: AnchorLeftMiddle},
	}
}

// ChunithmLayout is the CHUNITHM card.
func ChunithmLayout() Layout {
	header := baseHeader()
	header.Logo = Box{X: 40, Y: 94, W: 320, H: 240}
	return Layout{
		Canvas:   image.Pt(2200, 2500),
		Output:   image.Pt(1760, 2000),
		Header:   header,
		Grid:     Grid{OriginX: 70, Columns: 5, StepX: 416, StepY: 170},
		Tile:     baseTile(),
		ListTops: [2]int{400, 1460},
	}
}

// OngekiLayout is the O.N.G.E.K.I. card.
func OngekiLayout() Layout {
	header := baseHeader()
	header.Logo = Box{X: 16, Y: 112, W: 380, H: 210}
	return Layout{
		Canvas:   image.Pt(2200, 2800),
		Output:   image.Pt(1760, 2000),
		Header:   header,
		Grid:     Grid{OriginX: 70, Columns: 5, StepX: 416, StepY: 175},
		Tile:     baseTile(),
		ListTops: [2]int{380, 2210},
	}
}
