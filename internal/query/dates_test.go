package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutFromStrftime(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
		wantErr bool
	}{
		{name: "date_time", pattern: "%Y-%m-%d %H:%M:%S", want: "2006-01-02 15:04:05"},
		{name: "date_only", pattern: "%Y-%m-%d", want: "2006-01-02"},
		{name: "two_digit_year", pattern: "%d/%m/%y", want: "02/01/06"},
		{name: "escaped_percent", pattern: "%Y%%", want: "2006%"},
		{name: "literal_text", pattern: "on %Y", want: "on 2006"},
		{name: "unknown_directive", pattern: "%Y-%j", wantErr: true},
		{name: "trailing_bare_percent", pattern: "%Y-%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LayoutFromStrftime(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultDateLayout)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain_date_expands", input: "2024-03-31", want: "2024-03-31 00:00:00"},
		{name: "full_datetime_unchanged", input: "2024-03-31 00:00:00", want: "2024-03-31 00:00:00"},
		{name: "idempotent", input: "2024-03-31 15:30:00", want: "2024-03-31 15:30:00"},
		{name: "quotes_stripped", input: `"2024-03-31"`, want: "2024-03-31 00:00:00"},
		{name: "single_quotes_stripped", input: "'2024-03-31'", want: "2024-03-31 00:00:00"},
		{name: "whitespace_trimmed", input: "  2024-03-31  ", want: "2024-03-31 00:00:00"},
		{name: "malformed_passes_through", input: "not-a-date", want: "not-a-date"},
		{name: "ten_chars_not_a_date", input: "31/03/2024", want: "31/03/2024"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeCustomLayout(t *testing.T) {
	layout, err := LayoutFromStrftime("%Y/%m/%d %H:%M:%S")
	require.NoError(t, err)

	n := NewNormalizer(layout)
	assert.Equal(t, "2024/03/31 00:00:00", n.Normalize("2024-03-31"))
	assert.Equal(t, "2024/03/31 12:00:00", n.Normalize("2024/03/31 12:00:00"))
}

func TestDayPrefix(t *testing.T) {
	assert.Equal(t, "2024-03-31%", dayPrefix("2024-03-31 00:00:00"))
	assert.Equal(t, "2024-03-31%", dayPrefix("2024-03-31"))
}
