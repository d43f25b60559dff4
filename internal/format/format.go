// Package format holds the small string helpers shared by the form, the
// exporter and the backend's HTML views.
package format

import (
	"strconv"
	"strings"
)

const maxSheetNameLen = 31

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML makes s safe to place inside HTML text or attribute values.
func EscapeHTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlEscaper.Replace(s)
}

// FormatTime12 turns a 24-hour "HH:MM" (or "HH:MM:SS") value into
// "H:MM AM/PM".
// Empty or malformed input yields "".
func FormatTime12(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return ""
	}
	// seconds, if any, are dropped
	hour, minute := parts[0], parts[1]
	h, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil || h < 0 || h > 23 {
		return ""
	}

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return strconv.Itoa(h12) + ":" + minute + " " + suffix
}

// SafeSheetName replaces characters a spreadsheet refuses in sheet names
// with spaces and clamps the result to 31 characters.
func SafeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return ' '
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "Sheet"
	}
	if runes := []rune(cleaned); len(runes) > maxSheetNameLen {
		cleaned = string(runes[:maxSheetNameLen])
	}
	return cleaned
}

// DayMonthYear reorders a "YYYY-MM-DD" date to "DD-MM-YYYY". Anything that
// does not split into three dash-separated parts yields "".
func DayMonthYear(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
