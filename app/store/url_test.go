package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain url", "https://example.com/careers/123", "https://example.com/careers/123", false},
		{"scheme and host lowercased", "HTTPS://Example.COM/Careers/123", "https://example.com/Careers/123", false},
		{"path case preserved", "https://example.com/Jobs/ABC", "https://example.com/Jobs/ABC", false},
		{"surrounding whitespace trimmed", "  https://example.com/x \n", "https://example.com/x", false},
		{"trailing slash stripped", "https://example.com/careers/", "https://example.com/careers", false},
		{"bare root slash stripped", "https://example.com/", "https://example.com", false},
		{"no path unchanged", "https://example.com", "https://example.com", false},
		{"default https port dropped", "https://example.com:443/x", "https://example.com/x", false},
		{"default http port dropped", "http://example.com:80/x", "http://example.com/x", false},
		{"custom port kept", "https://example.com:8443/x", "https://example.com:8443/x", false},
		{"fragment dropped", "https://example.com/x#section", "https://example.com/x", false},
		{"query kept", "https://example.com/jobs?id=42&src=feed", "https://example.com/jobs?id=42&src=feed", false},
		{"trailing slash before query", "https://example.com/jobs/?id=42", "https://example.com/jobs?id=42", false},
		{
			"workday style url with encoded query",
			"https://workday.wd5.myworkdayjobs.com/en-US/Workday/job/Software-Engineer_JR-0096009?q=software%20engineer",
			"https://workday.wd5.myworkdayjobs.com/en-US/Workday/job/Software-Engineer_JR-0096009?q=software%20engineer",
			false,
		},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"no scheme", "example.com/careers", "", true},
		{"relative path", "/careers/123", "", true},
		{"unsupported scheme", "ftp://example.com/file", "", true},
		{"scheme only", "https://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	// normalizing an already normalized url must be a no-op
	inputs := []string{
		"HTTPS://Example.COM:443/Careers/123/",
		"http://example.com/jobs/?id=1#top",
		"https://example.com/",
	}
	for _, in := range inputs {
		once, err := NormalizeURL(in)
		require.NoError(t, err)
		twice, err := NormalizeURL(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", in)
	}
}
