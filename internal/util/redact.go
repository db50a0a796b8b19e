package util

import "regexp"

var (
	reEmail  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reToken  = regexp.MustCompile(`(?i)(?:api|secret|token|key|password)"?\s*[=:]\s*"?([A-Za-z0-9-_.]{8,})`)
	reBearer = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9-_.=]+`)
	rePhone  = regexp.MustCompile(`\+\d[\d -]{7,}\d`)
)

// RedactPII masks customer emails, phone numbers and credentials before a
// payload is written to the app log.
func RedactPII(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reBearer.ReplaceAllString(s, "Bearer [redacted]")
	s = reToken.ReplaceAllStringFunc(s, func(m string) string {
		sub := reToken.FindStringSubmatchIndex(m)
		return m[:sub[2]] + "[redacted]"
	})
	s = rePhone.ReplaceAllString(s, "[redacted-phone]")
	return s
}
