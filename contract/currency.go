package contract

import (
	"strings"

	"github.com/warp/safe-harbor-engine/generic"
)

// FormatUSD renders m as "$1,234,567.89". Negative amounts get a leading
// minus: "-$5.00".
func FormatUSD(m generic.Money) string {
	fixed := m.Value.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if m.Value.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}
