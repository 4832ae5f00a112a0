package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/edustar/attendance-register/internal/register"
)

// Layout constants for the paginated document. These were tuned for landscape
// A4 and must not drift: the column grid has to be byte-identical on every page.
const (
	pageWidth  = 297.0 // A4 landscape, mm
	bodyLimit  = 180.0 // last y a row may start-and-fit on
	rowHeight  = 10.0
	tableX     = 17.0
	tableWidth = 263.0 // sum of colWidths
	maxCell    = 40    // cell runes before ellipsis truncation
	maxLogoMM  = 25.0
)

var (
	colWidths = []float64{32, 25, 40, 18, 32, 22, 38, 38, 18}

	// Abbreviated headers so nine columns fit the fixed widths. Order matches
	// the shared schema.
	pdfHeaders = []string{"Full Name", "Contact", "Email", "Role", "Purpose", "Date", "Check-in Time", "Check-out Time", "Status"}
)

// PDF renders the selection as a landscape A4 document: centered title block
// (logo when available, text-only otherwise), then the fixed nine-column table.
// The header band is redrawn at the top of every overflow page and rows get
// alternating background shading.
func PDF(records []register.Record, logoPath string) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	writeTitleBlock(doc, logoPath, len(records))

	y := 55.0
	y = drawTableHeader(doc, y)
	for i, row := range Rows(records) {
		if y+rowHeight > bodyLimit {
			doc.AddPage()
			y = drawTableHeader(doc, 20)
		}
		if i%2 == 0 {
			doc.SetFillColor(245, 247, 250)
			doc.Rect(tableX, y-3, tableWidth, rowHeight, "F")
		}
		x := tableX
		for col, cell := range row {
			drawCell(doc, cell, x, y, colWidths[col])
			x += colWidths[col]
		}
		y += rowHeight
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeTitleBlock draws the logo (if it loads) with the title and metadata
// stacked beneath it. A missing or unreadable logo falls back to the text-only
// block; the title and metadata always render.
func writeTitleBlock(doc *fpdf.Fpdf, logoPath string, total int) {
	logoH := 0.0
	if w, h, ok := probeLogo(logoPath); ok {
		var lw, lh float64
		if ar := w / h; ar > 1 {
			lw, lh = maxLogoMM, maxLogoMM/ar
		} else {
			lh, lw = maxLogoMM, maxLogoMM*ar
		}
		doc.ImageOptions(logoPath, (pageWidth-lw)/2, 10, lw, lh, false, fpdf.ImageOptions{}, 0, "")
		logoH = lh
	}

	now := time.Now()
	doc.SetFont("Helvetica", "B", 16)
	centerText(doc, Title, 25+logoH)
	doc.SetFont("Helvetica", "", 10)
	centerText(doc, "Generated on: "+formatLocal(&now), 32+logoH)
	centerText(doc, fmt.Sprintf("Total Records: %d", total), 39+logoH)
}

// probeLogo validates the image on a scratch document so a bad file cannot
// poison the real one (fpdf errors are sticky).
func probeLogo(path string) (w, h float64, ok bool) {
	if path == "" {
		return 0, 0, false
	}
	if _, err := os.Stat(path); err != nil {
		return 0, 0, false
	}
	scratch := fpdf.New("L", "mm", "A4", "")
	info := scratch.RegisterImageOptions(path, fpdf.ImageOptions{})
	if scratch.Err() || info == nil {
		return 0, 0, false
	}
	w, h = info.Extent()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// drawTableHeader paints the purple header band at y and returns the y of the
// first data row below it.
func drawTableHeader(doc *fpdf.Fpdf, y float64) float64 {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(123, 31, 162)
	doc.Rect(tableX, y-3, tableWidth, rowHeight, "F")
	doc.SetTextColor(255, 255, 255)

	x := tableX
	for i, h := range pdfHeaders {
		doc.Text(x+2, y+2, h)
		x += colWidths[i]
	}

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(0, 0, 0)
	return y + rowHeight
}

// drawCell writes one cell, truncating long text with an ellipsis and dropping
// wrapped lines that would spill past the row's vertical budget.
func drawCell(doc *fpdf.Fpdf, cell string, x, y, width float64) {
	for i, line := range doc.SplitText(truncateCell(cell), width-4) {
		offset := float64(i) * 3
		if offset+2 >= rowHeight {
			break
		}
		doc.Text(x+2, y+2+offset, line)
	}
}

func truncateCell(s string) string {
	runes := []rune(s)
	if len(runes) <= maxCell {
		return s
	}
	return string(runes[:maxCell-3]) + "..."
}

func centerText(doc *fpdf.Fpdf, s string, y float64) {
	doc.Text((pageWidth-doc.GetStringWidth(s))/2, y, s)
}
