package ui

import (
	"fmt"
	"strings"
)

func cellText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	switch s {
	case "true":
		return "yes"
	case "false":
		return "no"
	}
	return s
}

func runeLen(s string) int { return len([]rune(s)) }

func truncateRunes(s string, w int) string {
	r := []rune(s)
	if w <= 0 || len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func padRight(s string, w int) string {
	if n := runeLen(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
