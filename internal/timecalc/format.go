package timecalc

import "fmt"

// FormatMinutes renders minutes as "7h 30m" or "45m".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%s%dh %02dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

// FormatBalance is FormatMinutes with an explicit plus sign for surpluses.
func FormatBalance(minutes int) string {
	if minutes > 0 {
		return "+" + FormatMinutes(minutes)
	}
	return FormatMinutes(minutes)
}
