package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fmchong/intramail/internal/client/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		file string
		want bool
	}{
		{"report.pdf", true},
		{"minutes.docx", true},
		{"roster.xlsx", true},
		{"xray.png", true},
		{"setup.exe", false},
		{"notes", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Allowed(models.ClassifyFile(tc.file)), tc.file)
	}
}

func TestObjectKey_DateShardedWithExtension(t *testing.T) {
	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	key := objectKey("scan.pdf", at)

	assert.True(t, strings.HasPrefix(key, "2026/08/31/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)

	other := objectKey("scan.pdf", at)
	assert.NotEqual(t, key, other, "keys must not collide")
}
