package logger

import "strings"

// MaskEmail deja la primera letra del usuario y del primer label del dominio.
//
//	nelly@example.com => n…@e….com
//	abc               => ***
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.IndexByte(s, '@')
	if at <= 0 {
		switch {
		case s == "":
			return ""
		case len(s) <= 3:
			return "***"
		default:
			return s[:1] + "…" + s[len(s)-1:]
		}
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 1 {
		local = local[:1] + "…"
	}
	labels := strings.Split(domain, ".")
	if len(labels[0]) > 1 {
		labels[0] = labels[0][:1] + "…"
	}
	return local + "@" + strings.Join(labels, ".")
}
