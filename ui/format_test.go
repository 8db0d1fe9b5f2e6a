package ui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatViews(t *testing.T) {
	tests := []struct {
		views int
		want  string
	}{
		{0, "0"},
		{950, "950"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999999, "1000.0K"},
		{1000000, "1.0M"},
		{2300000, "2.3M"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatViews(tt.views))
		})
	}
}

func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format("2006-01-02")
}

func TestFormatDate_Buckets(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "today"},
		{1, "1 day ago"},
		{2, "2 days ago"},
		{6, "6 days ago"},
		{7, "1 week ago"},
		{13, "1 week ago"},
		{14, "2 weeks ago"},
		{29, "4 weeks ago"},
		{30, "1 month ago"},
		{59, "1 month ago"},
		{60, "2 months ago"},
		{364, "12 months ago"},
		{365, "1 year ago"},
		{800, "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(daysAgo(tt.days)))
		})
	}
}

func TestFormatDate_Unparsable(t *testing.T) {
	assert.Equal(t, "recently", FormatDate("not-a-date"))
	assert.Equal(t, "recently", FormatDate(""))
	assert.Equal(t, "recently", FormatDate("2024/01/01"))
}

func TestFormatDate_FutureDate(t *testing.T) {
	assert.Equal(t, "today", FormatDate(daysAgo(-3)))
}
