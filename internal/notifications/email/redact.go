package email

import "strings"

// RedactEmail masks an address for logging: "ayse@example.com" becomes
// "a***@example.com". Strings without an "@" are masked entirely.
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}

	local, domain, found := strings.Cut(email, "@")
	if !found {
		return "***"
	}
	if local == "" {
		return "***@" + domain
	}
	return string(local[0]) + "***@" + domain
}
