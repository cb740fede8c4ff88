package thumbnail

import (
	"strings"

	"github.com/serisow/studio/raster"
)

const (
	Width  = 1280
	Height = 720

	wrapRatio        = 0.9
	lineHeightFactor = 1.2
	titleCenter      = 0.45
	subtitleCenter   = 0.65
)

// Measurer is the part of a canvas needed to lay out text.
type Measurer interface {
	SetFont(spec raster.FontSpec) error
	MeasureText(text string) raster.TextMetrics
}

// Wrap breaks text into lines no wider than maxWidth where possible. Lines
// are built greedily from whole words; a single word wider than maxWidth
// gets a line of its own and is never split.
func Wrap(m Measurer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	var lines []string
	line := ""
	for n, word := range words {
		test := line + word + " "
		if m.MeasureText(test).Width > maxWidth && n > 0 {
			lines = append(lines, strings.TrimSpace(line))
			line = word + " "
		} else {
			line = test
		}
	}
	return append(lines, strings.TrimSpace(line))
}

// Line is one wrapped line and the box it occupies.
type Line struct {
	Text   string  `json:"text"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Block is the layout of a title or subtitle. X is the alignment anchor and
// each line's Y is its vertical middle.
type Block struct {
	Text       string       `json:"text"`
	Align      raster.Align `json:"align"`
	X          float64      `json:"x"`
	CenterY    float64      `json:"center_y"`
	LineHeight float64      `json:"line_height"`
	Lines      []Line       `json:"lines"`
}

// LayoutBlock wraps text at 90% of the frame width and stacks the lines
// around centerRatio of the frame height.
func LayoutBlock(m Measurer, text string, style TextStyle, centerRatio float64, frameW, frameH int) (Block, error) {
	if err := m.SetFont(style.fontSpec()); err != nil {
		return Block{}, err
	}
	text = style.transform(text)

	block := Block{
		Text:       text,
		Align:      style.TextAlign,
		X:          anchorX(style.TextAlign, float64(frameW)),
		CenterY:    float64(frameH) * centerRatio,
		LineHeight: style.lineHeight(),
	}

	wrapped := Wrap(m, text, float64(frameW)*wrapRatio)
	top := block.CenterY - float64(len(wrapped))*block.LineHeight/2
	for i, content := range wrapped {
		y := top + block.LineHeight/2 + float64(i)*block.LineHeight
		width := m.MeasureText(content).Width
		left, right := lineSpan(block.Align, block.X, width)
		block.Lines = append(block.Lines, Line{
			Text:   content,
			Y:      y,
			Width:  width,
			Left:   left,
			Right:  right,
			Top:    y - block.LineHeight/2,
			Bottom: y + block.LineHeight/2,
		})
	}
	return block, nil
}

func anchorX(align raster.Align, frameW float64) float64 {
	switch align {
	case raster.AlignLeft:
		return frameW * 0.05
	case raster.AlignRight:
		return frameW * 0.95
	default:
		return frameW / 2
	}
}

func lineSpan(align raster.Align, x, width float64) (float64, float64) {
	switch align {
	case raster.AlignLeft:
		return x, x + width
	case raster.AlignRight:
		return x - width, x
	default:
		return x - width/2, x + width/2
	}
}

// Gradient returns the gradient line for a text line's box.
func (l Line) Gradient(direction GradientDirection) (x0, y0, x1, y1 float64) {
	x0, x1 = l.Left, l.Left
	y0, y1 = l.Y, l.Y
	switch direction {
	case ToRight:
		x0, x1 = l.Left, l.Right
	case ToBottom:
		y0, y1 = l.Top, l.Bottom
	case ToBottomRight:
		x0, y0, x1, y1 = l.Left, l.Top, l.Right, l.Bottom
	case ToBottomLeft:
		x0, y0, x1, y1 = l.Right, l.Top, l.Left, l.Bottom
	}
	return x0, y0, x1, y1
}

// OverlayBox is where the overlay image lands in the frame.
type OverlayBox struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`
}

// PlaceOverlay sizes the overlay to Size percent of the frame width, keeps
// its aspect ratio and centers it on the X/Y percentages.
func PlaceOverlay(o Overlay, imgW, imgH, frameW, frameH int) OverlayBox {
	w := float64(frameW) * o.Size / 100
	h := 0.0
	if imgW > 0 {
		h = w * float64(imgH) / float64(imgW)
	}
	return OverlayBox{
		X:       float64(frameW)*o.X/100 - w/2,
		Y:       float64(frameH)*o.Y/100 - h/2,
		Width:   w,
		Height:  h,
		Opacity: o.Opacity,
	}
}

// Layout is the full text layout of a thumbnail, shared by export and the
// live preview.
type Layout struct {
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Title    Block `json:"title"`
	Subtitle Block `json:"subtitle"`
}

func ComputeLayout(m Measurer, doc Document) (*Layout, error) {
	title, err := LayoutBlock(m, doc.Title, doc.TitleStyle, titleCenter, Width, Height)
	if err != nil {
		return nil, err
	}
	subtitle, err := LayoutBlock(m, doc.Subtitle, doc.SubtitleStyle, subtitleCenter, Width, Height)
	if err != nil {
		return nil, err
	}
	return &Layout{Width: Width, Height: Height, Title: title, Subtitle: subtitle}, nil
}
