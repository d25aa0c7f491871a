package service

import (
	"bytes"
	"encoding/base64"
	"math"
	"math/rand"
	"sync"

	"github.com/fogleman/gg"
)

const proceduralImageSize = 512

type colorPalette struct {
	primary   string
	secondary string
	accent    string
}

// emotion palettes for procedural rendering
var proceduralPalettes = map[string]colorPalette{
	"joy":     {"#FFD700", "#FFA500", "#FFFFE0"},
	"love":    {"#FFB6C1", "#FF69B4", "#FFE4E1"},
	"calm":    {"#ADD8E6", "#B0C4DE", "#F0F8FF"},
	"sadness": {"#4682B4", "#6495ED", "#B0C4DE"},
	"anxiety": {"#808080", "#696969", "#D3D3D3"},
}

var defaultPalette = colorPalette{"#90EE90", "#98FB98", "#F0FFF0"}

// ProceduralRenderer draws simple sanctuary element images so the journaling
// flow still produces visuals when every image provider is down.
type ProceduralRenderer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewProceduralRenderer(rng *rand.Rand) *ProceduralRenderer {
	return &ProceduralRenderer{rng: rng}
}

// Render draws an element as a PNG and returns it as a base64 data URL.
func (r *ProceduralRenderer) Render(elementType, emotion string) (string, error) {
	palette, ok := proceduralPalettes[emotion]
	if !ok {
		palette = defaultPalette
	}

	dc := gg.NewContext(proceduralImageSize, proceduralImageSize)
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	switch elementType {
	case "flower", "plant":
		r.drawFlower(dc, palette)
	case "tree":
		r.drawTree(dc, palette)
	case "crystal":
		r.drawCrystal(dc, palette)
	case "butterfly":
		r.drawButterfly(dc, palette)
	case "bird":
		r.drawBird(dc, palette)
	case "stone", "rock":
		r.drawStone(dc, palette)
	case "water", "stream":
		r.drawWater(dc, palette)
	default:
		r.drawAbstract(dc, palette)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *ProceduralRenderer) drawFlower(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2

	petals := 5 + r.intn(4)
	petalSize := 40 + r.float64()*40

	for i := 0; i < petals; i++ {
		angle := 2 * math.Pi * float64(i) / float64(petals)
		px := cx + math.Cos(angle)*30
		py := cy + math.Sin(angle)*30

		dc.SetHexColor(palette.primary)
		dc.DrawCircle(px, py, petalSize/2)
		dc.FillPreserve()
		dc.SetHexColor(palette.secondary)
		dc.SetLineWidth(2)
		dc.Stroke()
	}

	dc.SetHexColor(palette.accent)
	dc.DrawCircle(cx, cy, 15)
	dc.FillPreserve()
	dc.SetHexColor(palette.secondary)
	dc.SetLineWidth(1)
	dc.Stroke()
}

func (r *ProceduralRenderer) drawTree(dc *gg.Context, palette colorPalette) {
	cx := float64(proceduralImageSize) / 2
	bottom := float64(proceduralImageSize) - 50

	trunkWidth, trunkHeight := 30.0, 150.0
	dc.SetHexColor(palette.secondary)
	dc.DrawRectangle(cx-trunkWidth/2, bottom-trunkHeight, trunkWidth, trunkHeight)
	dc.Fill()

	crownRadius := 60 + r.float64()*40
	crownY := bottom - trunkHeight - crownRadius/2
	dc.SetHexColor(palette.primary)
	dc.DrawEllipse(cx, crownY, crownRadius, crownRadius/2)
	dc.FillPreserve()
	dc.SetHexColor(palette.accent)
	dc.SetLineWidth(3)
	dc.Stroke()
}

func (r *ProceduralRenderer) drawCrystal(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2
	radius := 60 + r.float64()*40

	dc.SetHexColor(palette.primary)
	dc.DrawRegularPolygon(6, cx, cy, radius, 0)
	dc.FillPreserve()
	dc.SetHexColor(palette.secondary)
	dc.SetLineWidth(3)
	dc.Stroke()

	dc.SetHexColor(palette.accent)
	dc.DrawRegularPolygon(6, cx, cy, radius*0.5, 0)
	dc.Fill()
}

func (r *ProceduralRenderer) drawButterfly(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2

	wing := 50.0
	dc.SetHexColor(palette.primary)
	dc.DrawEllipse(cx-wing/2, cy, wing/2, wing/2)
	dc.Fill()
	dc.DrawEllipse(cx+wing/2, cy, wing/2, wing/2)
	dc.Fill()

	lower := 35.0
	dc.SetHexColor(palette.accent)
	dc.DrawEllipse(cx-lower/2, cy+lower/2+10, lower/2, lower/2)
	dc.Fill()
	dc.DrawEllipse(cx+lower/2, cy+lower/2+10, lower/2, lower/2)
	dc.Fill()

	dc.SetHexColor(palette.secondary)
	dc.DrawEllipse(cx, cy, 3, 30)
	dc.Fill()
}

func (r *ProceduralRenderer) drawBird(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2

	dc.SetHexColor(palette.primary)
	dc.DrawEllipse(cx, cy, 20, 12.5)
	dc.FillPreserve()
	dc.SetHexColor(palette.secondary)
	dc.SetLineWidth(2)
	dc.Stroke()

	dc.SetHexColor(palette.accent)
	dc.DrawEllipse(cx, cy-20, 15, 15)
	dc.FillPreserve()
	dc.SetHexColor(palette.secondary)
	dc.SetLineWidth(1)
	dc.Stroke()
}

func (r *ProceduralRenderer) drawStone(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2

	vertices := 6 + r.intn(5)
	baseRadius := 50 + r.float64()*30

	dc.NewSubPath()
	for i := 0; i < vertices; i++ {
		angle := 2 * math.Pi * float64(i) / float64(vertices)
		radius := baseRadius * (0.7 + r.float64()*0.6)
		x := cx + math.Cos(angle)*radius
		y := cy + math.Sin(angle)*radius
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetHexColor(palette.primary)
	dc.FillPreserve()
	dc.SetHexColor(palette.secondary)
	dc.SetLineWidth(2)
	dc.Stroke()

	// texture lines
	dc.SetHexColor(palette.accent)
	dc.SetLineWidth(2)
	for i := 0; i < 3; i++ {
		sx := cx - 30 + r.float64()*60
		sy := cy - 30 + r.float64()*60
		dc.DrawLine(sx, sy, sx-20+r.float64()*40, sy-20+r.float64()*40)
		dc.Stroke()
	}
}

func (r *ProceduralRenderer) drawWater(dc *gg.Context, palette colorPalette) {
	for i := 0; i < 5; i++ {
		y := float64(proceduralImageSize)/2 + float64(i-2)*15

		dc.NewSubPath()
		for x := 0.0; x < proceduralImageSize; x += 20 {
			waveY := y + math.Sin(x*0.02+float64(i))*10
			if x == 0 {
				dc.MoveTo(x, waveY)
			} else {
				dc.LineTo(x, waveY)
			}
		}
		dc.SetHexColor(palette.primary)
		dc.SetLineWidth(8)
		dc.StrokePreserve()
		dc.SetHexColor(palette.accent)
		dc.SetLineWidth(4)
		dc.Stroke()
	}
}

func (r *ProceduralRenderer) drawAbstract(dc *gg.Context, palette colorPalette) {
	cx, cy := float64(proceduralImageSize)/2, float64(proceduralImageSize)/2

	// translucent overlapping circles
	dc.SetHexColor(palette.primary + "80")
	for i := 0; i < 3; i++ {
		offsetX := -50 + r.float64()*100
		offsetY := -50 + r.float64()*100
		radius := 30 + r.float64()*30

		dc.DrawCircle(cx+offsetX, cy+offsetY, radius)
		dc.Fill()
	}
}

func (r *ProceduralRenderer) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *ProceduralRenderer) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
