package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

// A4 portrait, millimetres.
const (
	pageW       = 210.0
	pageH       = 297.0
	margin      = 14.0
	innerW      = pageW - 2*margin
	firstBoxH   = 165.0
	bodyLineH   = 4.6
	footerLineH = 4.2
)

// PDF renders the document. The output carries no producer or creator
// metadata.
func PDF(in Input) ([]byte, error) {
	l := Build(in)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetProducer("", false)
	pdf.SetCreator("", false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	frame(pdf)

	y := margin + 10
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 13)
	centered(pdf, tr, l.Header[0], y)

	y += 6
	pdf.SetFont("Helvetica", "", 11)
	centered(pdf, tr, l.Header[1], y)

	y += 5
	pdf.SetFontSize(10.5)
	centered(pdf, tr, l.Header[2], y)

	y += 5
	centered(pdf, tr, l.Header[3], y)

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	centered(pdf, tr, l.Label, y)

	y += 6
	pdf.SetFont("Helvetica", "", 11)
	lines := wrap(pdf, tr, l.Body, innerW-12)

	boxTop, boxH := y, firstBoxH
	for {
		bodyBox(pdf, boxTop, boxH)
		n := linesFitting(boxH)
		if n > len(lines) {
			n = len(lines)
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(10, 10, 10)
		for i, line := range lines[:n] {
			pdf.Text(margin+6, boxTop+8+float64(i)*bodyLineH, tr(line))
		}
		lines = lines[n:]
		footer(pdf, tr, l.Footer)
		if len(lines) == 0 {
			break
		}

		pdf.AddPage()
		frame(pdf)
		boxTop = margin + 8
		boxH = pageH - margin - float64(len(l.Footer))*4 - 6 - boxTop
	}

	if err := pdf.Error(); err != nil {
		return nil, apperr.Render(err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Render(fmt.Errorf("write pdf: %w", err))
	}
	return buf.Bytes(), nil
}

// frame draws the top and side borders plus a lighter bottom rule.
func frame(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.3)
	pdf.Line(margin, margin, pageW-margin, margin)
	pdf.Line(margin, margin, margin, pageH-margin)
	pdf.Line(pageW-margin, margin, pageW-margin, pageH-margin)
	pdf.SetDrawColor(90, 90, 90)
	pdf.Line(margin, pageH-margin, pageW-margin, pageH-margin)
}

func bodyBox(pdf *fpdf.Fpdf, top, h float64) {
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.RoundedRect(margin+2, top, innerW-4, h, 2, "1234", "D")
}

func footer(pdf *fpdf.Fpdf, tr func(string) string, lines []string) {
	pdf.SetFont("Helvetica", "", 9.5)
	pdf.SetTextColor(40, 40, 40)
	y := pageH - margin - float64(len(lines))*4
	for _, line := range lines {
		centered(pdf, tr, line, y)
		y += footerLineH
	}
}

func centered(pdf *fpdf.Fpdf, tr func(string) string, s string, y float64) {
	if s == "" {
		return
	}
	t := tr(s)
	pdf.Text(pageW/2-pdf.GetStringWidth(t)/2, y, t)
}

// linesFitting is the number of body baselines that fit in a box of height h.
func linesFitting(h float64) int {
	n := int(math.Floor((h-8-3)/bodyLineH)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// wrap breaks text into lines no wider than maxW in the current font,
// keeping explicit line breaks. Words longer than a line are cut.
func wrap(pdf *fpdf.Fpdf, tr func(string) string, text string, maxW float64) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	width := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for width(w) > maxW {
				cut := fitRunes(w, maxW, width)
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, w[:cut])
				w = w[cut:]
			}
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if width(candidate) <= maxW {
				line = candidate
				continue
			}
			out = append(out, line)
			line = w
		}
		out = append(out, line)
	}
	return out
}

// fitRunes returns the byte length of the longest rune prefix of w that fits.
func fitRunes(w string, maxW float64, width func(string) float64) int {
	cut := 0
	for i, r := range w {
		next := i + utf8.RuneLen(r)
		if width(w[:next]) > maxW {
			break
		}
		cut = next
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(w)
		return size
	}
	return cut
}
