package util

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	in := `{"email":"jane.doe@example.com","phone":"+1 555 010 9999","token":"abcd1234efgh","name":"Jane"}`
	out := RedactPII(in)
	for _, leak := range []string{"jane.doe@example.com", "555 010 9999", "abcd1234efgh"} {
		if strings.Contains(out, leak) {
			t.Fatalf("leaked %q in %s", leak, out)
		}
	}
	if !strings.Contains(out, `"name":"Jane"`) {
		t.Fatalf("over-redacted: %s", out)
	}
	if got := RedactPII("Authorization: Bearer eyJhbGciOi.xyz"); strings.Contains(got, "eyJ") {
		t.Fatalf("bearer leaked: %s", got)
	}
}
