package service

import (
	"fmt"
	"strconv"
	"strings"
)

// formatMoney renders "₹x,xxx.xx" with comma-grouped thousands.
func formatMoney(amount float64) string {
	return "₹" + groupThousands(fmt.Sprintf("%.2f", amount))
}

// formatMoneyWhole renders "₹x,xxx" with no fractional part.
func formatMoneyWhole(amount float64) string {
	return "₹" + groupThousands(fmt.Sprintf("%.0f", amount))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteString(fracPart)
	return b.String()
}

// parseMoney strips every character except digits and dots and parses the
// remainder. Empty or unparseable input normalizes to zero.
func parseMoney(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}
