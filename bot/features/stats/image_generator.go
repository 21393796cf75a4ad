package stats

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"kudos/bot/common"
	"kudos/models"
)

// TableColumn defines a column in the leaderboard table
type TableColumn struct {
	Header    string
	XPosition int
	ColorRGB  [3]float64
}

// TableRow represents a single row of data
type TableRow struct {
	Rank int
	Data []string
}

// TableStyle defines the visual style of the table
type TableStyle struct {
	Width      int
	MinHeight  int
	Padding    int
	RowHeight  int
	PodiumRGBA [3][4]float64 // gold, silver, bronze row tints
}

// LeaderboardImageGenerator renders the kudos leaderboard as a PNG
type LeaderboardImageGenerator struct {
	style TableStyle
}

// NewLeaderboardImageGenerator creates a new image generator with default style
func NewLeaderboardImageGenerator() *LeaderboardImageGenerator {
	return &LeaderboardImageGenerator{
		style: TableStyle{
			Width:     320,
			MinHeight: 120,
			Padding:   15,
			RowHeight: 26,
			PodiumRGBA: [3][4]float64{
				{1, 0.84, 0, 0.1},
				{0.8, 0.8, 0.8, 0.08},
				{0.8, 0.5, 0.2, 0.06},
			},
		},
	}
}

// GenerateLeaderboard renders one row per entry, ranked in the given order
func (g *LeaderboardImageGenerator) GenerateLeaderboard(title string, entries []*models.ScoreboardEntry) ([]byte, error) {
	columns := []TableColumn{
		{Header: "#", XPosition: g.style.Padding, ColorRGB: [3]float64{0.85, 0.85, 0.9}},
		{Header: "Member", XPosition: g.style.Padding + 30, ColorRGB: [3]float64{1.0, 1.0, 1.0}},
		{Header: "Kudos", XPosition: g.style.Padding + 210, ColorRGB: [3]float64{1.0, 0.9, 0.5}},
	}

	rows := make([]TableRow, len(entries))
	for i, e := range entries {
		rows[i] = TableRow{
			Rank: i + 1,
			Data: []string{
				fmt.Sprintf("%d", i+1),
				common.Truncate(e.Username, 18),
				common.FormatBalance(e.TotalReceived),
			},
		}
	}

	return g.generateTable(title, columns, rows)
}

// generateTable creates the actual image
func (g *LeaderboardImageGenerator) generateTable(title string, columns []TableColumn, rows []TableRow) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("row_count", len(rows)).
			Debug("Leaderboard image generation completed")
	}()

	// Title (30px) + header (25px) + header padding (30px) + rows + bottom padding (15px)
	height := 30 + 25 + 30 + len(rows)*g.style.RowHeight + 15
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}

	dc := gg.NewContext(g.style.Width, height)
	dc.SetFillRule(gg.FillRuleWinding)

	// Vertical gradient background
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawLine(0, float64(i), float64(g.style.Width), float64(i))
		dc.Stroke()
	}

	titleFace, err := loadFont(gobold.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load title font: %w", err)
	}
	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc.SetFontFace(titleFace)
	dc.SetRGB(1.0, 0.9, 0.5)
	dc.DrawStringAnchored(title, float64(g.style.Width)/2, 20, 0.5, 0.5)

	dc.SetFontFace(face)
	y := float64(55)

	// Header background
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.style.Width), 20)
	dc.Fill()

	dc.SetRGB(1.0, 1.0, 1.0)
	for _, col := range columns {
		drawSharpText(dc, col.Header, float64(col.XPosition), y)
	}

	// Header underline
	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.style.Width), y+8)
	dc.Stroke()

	y += 30
	if len(rows) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		dc.DrawStringAnchored("No kudos given yet", float64(g.style.Width)/2, y-5, 0.5, 0.5)
	}

	for i, row := range rows {
		if i < 3 {
			c := g.style.PodiumRGBA[i]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.style.Width), float64(g.style.RowHeight))
		dc.Fill()

		for j := 0; j < len(columns) && j < len(row.Data); j++ {
			col := columns[j]
			dc.SetRGB(col.ColorRGB[0], col.ColorRGB[1], col.ColorRGB[2])
			drawSharpText(dc, row.Data[j], float64(col.XPosition), y)
		}

		y += float64(g.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// drawSharpText draws text over a faint offset shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}
