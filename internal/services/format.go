package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

// FormatTime renders seconds as "1h 30m 5s", dropping zero components.
func FormatTime(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	var b strings.Builder
	if h > 0 { fmt.Fprintf(&b, "%dh ", h) }
	if m > 0 { fmt.Fprintf(&b, "%dm ", m) }
	if s > 0 { fmt.Fprintf(&b, "%ds", s) }
	return strings.TrimSpace(b.String())
}

// FormatAmount renders a seconds total in the selected unit using the table
// view's rounding convention: hours with no decimals, days with two.
func FormatAmount(seconds int, unit string, hoursPerDay int) string {
	v := float64(seconds) / unitDivisor(unit, hoursPerDay)
	if unit == domain.TimeUnitDays {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// IsDarkColor reports whether a "#RRGGBB" label color needs light text.
func IsDarkColor(color string) bool {
	hex := strings.TrimPrefix(color, "#")
	rgb, err := strconv.ParseInt(hex, 16, 32)
	if err != nil { return false }
	r := (rgb >> 16) & 0xff
	g := (rgb >> 8) & 0xff
	b := rgb & 0xff
	brightness := (r*299 + g*587 + b*114) / 1000
	return brightness < 125
}
