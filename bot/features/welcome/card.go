package welcome

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"guildkeeper/service"
)

// CardStyle defines the layout of the welcome card
type CardStyle struct {
	Width       int
	Height      int
	Padding     int
	AccentRGB   [3]float64
	TitleSize   float64
	BodySize    float64
	MaxNameRune int
}

// CardRenderer draws a PNG banner attached to welcome notices
type CardRenderer struct {
	style CardStyle

	once      sync.Once
	titleFace font.Face
	bodyFace  font.Face
	fontErr   error
}

// NewCardRenderer creates a card renderer with the default style
func NewCardRenderer() *CardRenderer {
	return &CardRenderer{
		style: CardStyle{
			Width:       600,
			Height:      180,
			Padding:     24,
			AccentRGB:   [3]float64{0xBF / 255.0, 0x8E / 255.0, 0xEF / 255.0},
			TitleSize:   26,
			BodySize:    16,
			MaxNameRune: 28,
		},
	}
}

var _ service.CardRenderer = (*CardRenderer)(nil)

// Render draws the card for a member join
func (r *CardRenderer) Render(in service.WelcomeInput) ([]byte, error) {
	r.once.Do(func() {
		r.titleFace, r.fontErr = loadFont(gobold.TTF, r.style.TitleSize)
		if r.fontErr != nil {
			return
		}
		r.bodyFace, r.fontErr = loadFont(goregular.TTF, r.style.BodySize)
	})
	if r.fontErr != nil {
		return nil, fmt.Errorf("failed to load card fonts: %w", r.fontErr)
	}

	w, h := float64(r.style.Width), float64(r.style.Height)
	pad := float64(r.style.Padding)
	accent := r.style.AccentRGB

	dc := gg.NewContext(r.style.Width, r.style.Height)

	// Dark vertical gradient background
	for y := 0; y < r.style.Height; y++ {
		t := float64(y) / h
		dc.SetRGB(0.12+0.04*t, 0.11+0.03*t, 0.16+0.06*t)
		dc.DrawLine(0, float64(y), w, float64(y))
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	// Accent bar
	dc.SetRGB(accent[0], accent[1], accent[2])
	dc.DrawRectangle(0, 0, 8, h)
	dc.Fill()

	// Initial badge in place of the avatar
	radius := (h - 2*pad) / 2
	cx, cy := pad+8+radius, h/2
	dc.SetRGBA(accent[0], accent[1], accent[2], 0.85)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(r.titleFace)
	dc.DrawStringAnchored(initial(in.Member.DisplayName()), cx, cy, 0.5, 0.35)

	textX := cx + radius + pad
	dc.SetFontFace(r.titleFace)
	drawSharpText(dc, truncate(in.Member.DisplayName(), r.style.MaxNameRune), textX, pad+r.style.TitleSize)

	dc.SetFontFace(r.bodyFace)
	dc.SetRGB(0.85, 0.85, 0.9)
	lines := cardLines(in)
	y := pad + r.style.TitleSize + 14 + r.style.BodySize
	for _, line := range lines {
		drawSharpText(dc, truncate(line, 48), textX, y)
		y += r.style.BodySize + 8
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func cardLines(in service.WelcomeInput) []string {
	var lines []string
	if in.GuildName != "" {
		lines = append(lines, "Welcome to "+in.GuildName)
	}
	if in.MemberCount > 0 {
		lines = append(lines, fmt.Sprintf("Member #%d", in.MemberCount))
	}
	if in.Attribution == service.AttributionFound && in.Inviter != nil && in.Inviter.InviterName != "" {
		lines = append(lines, "Invited by "+in.Inviter.InviterName)
	}
	return lines
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+1, y+1)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
