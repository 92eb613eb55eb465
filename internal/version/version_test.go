package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		commit    string
		expected  string
		userAgent string
	}{
		{"development version without commit", "development", "unknown", "development", "bellsync/development"},
		{"release version with commit", "1.0.0", "abc1234", "1.0.0+abc1234", "bellsync/1.0.0+abc1234"},
		{"unknown commit shows only version", "2.0.0", "unknown", "2.0.0", "bellsync/2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origCommit := Version, Commit
			defer func() {
				Version, Commit = origVersion, origCommit
			}()

			Version, Commit = tt.version, tt.commit

			assert.Equal(t, tt.expected, String())
			assert.Equal(t, tt.userAgent, UserAgent())
		})
	}
}
