package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// renderTable writes a pipe table padded by display width, so labels such
// as "R²" or accented makes stay aligned.
func renderTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	writeRow := func(cells []string) {
		var sb strings.Builder
		sb.WriteString("|")
		for i := range widths {
			content := ""
			if i < len(cells) {
				content = cells[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(content, widths[i]))
			sb.WriteString(" |")
		}
		fmt.Fprintln(w, sb.String())
	}

	writeRow(header)
	sep := make([]string, len(widths))
	for i, cw := range widths {
		sep[i] = strings.Repeat("-", cw)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
}

// formatUSD renders an amount rounded to cents with thousands separators.
func formatUSD(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + "$" + sb.String() + "." + frac
}

func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}
