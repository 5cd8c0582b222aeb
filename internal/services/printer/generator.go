package printer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
)

// DefaultQRSize is the PNG edge length in pixels
const DefaultQRSize = 256

// LabelConfig holds configuration for PDF generation
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 3x8 sheet
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 8, MarginTop: 10, MarginLeft: 8, GapX: 3, GapY: 2}
}

func (c LabelConfig) withDefaults() LabelConfig {
	d := DefaultLabelConfig()
	if c.Cols <= 0 {
		c.Cols = d.Cols
	}
	if c.Rows <= 0 {
		c.Rows = d.Rows
	}
	if c.MarginTop <= 0 {
		c.MarginTop = d.MarginTop
	}
	if c.MarginLeft <= 0 {
		c.MarginLeft = d.MarginLeft
	}
	if c.GapX < 0 {
		c.GapX = 0
	}
	if c.GapY < 0 {
		c.GapY = 0
	}
	return c
}

// PublicURL is what a scanned asset QR code opens.
func PublicURL(baseURL, qrCode string) string {
	return strings.TrimRight(baseURL, "/") + "/public/assets/" + qrCode
}

// AssetQRCode renders the public lookup URL of an asset as a PNG.
func AssetQRCode(baseURL, qrCode string, size int) ([]byte, error) {
	if qrCode == "" {
		return nil, errors.New("empty qr code")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(PublicURL(baseURL, qrCode), qrcode.Medium, size)
}

// LabelsPDF lays out one QR label per asset on A4 pages. An empty asset list
// or a layout that leaves no room for a label is apperr.ErrInvalid.
func LabelsPDF(baseURL string, assets []models.Asset, cfg LabelConfig) ([]byte, error) {
	if len(assets) == 0 {
		return nil, apperr.Invalid("no assets to print")
	}
	cfg = cfg.withDefaults()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)
	if labelW <= 0 || labelH <= 0 {
		return nil, apperr.Invalid("label grid %dx%d does not fit the page", cfg.Cols, cfg.Rows)
	}

	labelsPerPage := cfg.Cols * cfg.Rows
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for i, asset := range assets {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		png, err := AssetQRCode(baseURL, asset.QRCode, DefaultQRSize)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", asset.ID, err)
		}

		imgName := fmt.Sprintf("qr_%d", asset.ID)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(png))

		// QR on the left, text on the right
		qrSize := labelH * 0.85
		if qrSize > labelW*0.45 {
			qrSize = labelW * 0.45
		}
		pdf.ImageOptions(imgName, x+1, y+(labelH-qrSize)/2, qrSize, qrSize, false, imgOptions, 0, "")

		textX := x + qrSize + 2
		textW := labelW - qrSize - 3

		pdf.SetXY(textX, y+2)
		pdf.SetFontSize(8)
		pdf.MultiCell(textW, 3.5, pdf.UnicodeTranslatorFromDescriptor("")(asset.Name), "", "L", false)

		pdf.SetX(textX)
		pdf.SetFontSize(6)
		pdf.CellFormat(textW, 3, string(asset.Category), "", 1, "L", false, 0, "")

		pdf.SetXY(textX, y+labelH-5)
		pdf.CellFormat(textW, 3, asset.QRCode, "", 0, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
