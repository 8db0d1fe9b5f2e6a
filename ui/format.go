// Package ui renders the HTML pages and provides the display formatting
// helpers exposed to templates.
package ui

import (
	"fmt"
	"html/template"
	"strconv"
	"time"
)

// Funcs returns the template functions available to all pages.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatViews": FormatViews,
		"formatDate":  FormatDate,
	}
}

// FormatViews abbreviates a view count: 2300000 -> "2.3M", 1500 -> "1.5K",
// 950 -> "950".
func FormatViews(views int) string {
	if views >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(views)/1000000)
	}
	if views >= 1000 {
		return fmt.Sprintf("%.1fK", float64(views)/1000)
	}
	return strconv.Itoa(views)
}

// FormatDate turns a yyyy-mm-dd date into a relative age string. Unparsable
// input yields "recently".
func FormatDate(uploadDate string) string {
	date, err := time.ParseInLocation("2006-01-02", uploadDate, time.Local)
	if err != nil {
		return "recently"
	}

	days := int(time.Since(date).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
