package version

import "fmt"

// Set at build time via -ldflags "-X merchantconsole/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func String() string {
	base := Version
	if Commit != "" {
		base += fmt.Sprintf(" (%s)", Commit)
	}
	if Date != "" {
		base += fmt.Sprintf(" %s", Date)
	}
	return base
}

// UserAgent identifies the console to the merchant API.
func UserAgent() string {
	ua := "merchantconsole/" + Version
	if Commit != "" {
		ua += "+" + Commit
	}
	return ua
}
