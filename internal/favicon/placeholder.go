package favicon

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// GenericIcon is used when no hostname can be derived from the URL.
const GenericIcon = `data:image/svg+xml,<svg xmlns="http://www.w3.org/2000/svg" width="32" height="32" viewBox="0 0 32 32"><rect width="32" height="32" fill="%236b7280" rx="4"/><path d="M10 14a4 4 0 0 1 8 0v1a4 4 0 0 1-8 0v-1zm4-6a6 6 0 0 0-6 6v1a6 6 0 0 0 12 0v-1a6 6 0 0 0-6-6z" fill="white"/></svg>`

// Placeholder renders a rounded square in a colour derived from the
// hostname, with the hostname's first letter upper-cased on top.
func Placeholder(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return GenericIcon
	}
	host := u.Hostname()

	r, _ := utf8.DecodeRuneInString(host)
	letter := html.EscapeString(strings.ToUpper(string(r)))

	return fmt.Sprintf(`data:image/svg+xml,<svg xmlns="http://www.w3.org/2000/svg" width="32" height="32" viewBox="0 0 32 32">`+
		`<rect width="32" height="32" fill="%%23%s" rx="4"/>`+
		`<text x="16" y="20" text-anchor="middle" fill="white" font-family="Arial" font-size="14" font-weight="bold">%s</text>`+
		`</svg>`, HostColor(host), letter)
}

// HostColor hashes s into a six-digit hex colour. The hash runs over UTF-16
// code units with 32-bit wraparound so colours stay stable across clients.
func HostColor(s string) string {
	var hash int32
	for _, c := range utf16.Encode([]rune(s)) {
		hash = int32(c) + ((hash << 5) - hash)
	}
	return fmt.Sprintf("%06x", uint32(hash)&0xFFFFFF)
}
