package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"merchantconsole/internal/filter"
	"merchantconsole/internal/model"
)

func overlay(base, over string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(over, "\n")
	n := len(bLines)
	if len(oLines) > n {
		n = len(oLines)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		var b, o string
		if i < len(bLines) {
			b = bLines[i]
		}
		if i < len(oLines) {
			o = oLines[i]
		}
		// whitespace-only overlay lines are transparent
		if strings.TrimSpace(o) != "" {
			out[i] = o
		} else {
			out[i] = b
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard copies text using OSC52.
func copyToClipboard(s string) {
	enc := base64.StdEncoding.EncodeToString([]byte(stripANSI(s)))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func renderChips(chips []filter.Chip, labels map[string]string, st Styles) string {
	if len(chips) == 0 {
		return ""
	}
	parts := make([]string, len(chips))
	for i, c := range chips {
		label := labels[c.Field]
		if label == "" {
			label = c.Field
		}
		parts[i] = st.Chip.Render(fmt.Sprintf("%d %s: %s", i+1, label, c.Value))
	}
	return strings.Join(parts, " ")
}

// renderSections lays out every section as aligned key/value lines.
func renderSections(d model.Detail, st Styles) string {
	var b strings.Builder
	for i, sec := range d.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.Section.Render(strings.ToUpper(sec.Name)) + "\n")
		names := sec.FieldNames()
		w := 0
		for _, k := range names {
			if n := runeLen(k); n > w {
				w = n
			}
		}
		for _, k := range names {
			b.WriteString("  " + st.Key.Render(padRight(k, w)) + "  " + sec.Fields[k] + "\n")
		}
		for j, it := range sec.Items {
			keys := make([]string, 0, len(it))
			for k := range it {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			kv := make([]string, len(keys))
			for x, k := range keys {
				kv[x] = k + "=" + it[k]
			}
			b.WriteString(fmt.Sprintf("  #%d %s\n", j+1, strings.Join(kv, "  ")))
		}
		if len(names) == 0 && len(sec.Items) == 0 {
			b.WriteString(st.Help.Render("  (empty)") + "\n")
		}
	}
	return b.String()
}
