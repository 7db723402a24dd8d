package compose

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmchong/intramail/internal/client/models"
)

func newPreview(t *testing.T, name string) *PreviewHandle {
	t.Helper()
	h, err := NewPreview(name, []byte("%PDF-1.7"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Release() })
	return h
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPreview_ReleaseRemovesFileIdempotently(t *testing.T) {
	h := newPreview(t, "scan.pdf")
	path := h.Path()
	require.True(t, fileExists(path))

	require.NoError(t, h.Release())
	assert.False(t, fileExists(path))
	assert.Empty(t, h.Path())
	require.NoError(t, h.Release())
}

func TestDraft_RemoveReleasesPreview(t *testing.T) {
	d := NewDraft()
	h := newPreview(t, "scan.pdf")
	path := h.Path()
	d.Add(models.Attachment{ID: "a1", Name: "scan.pdf"}, h)
	d.Add(models.Attachment{ID: "a2", Name: "roster.xlsx"}, nil)

	require.NoError(t, d.Remove("a1"))
	assert.False(t, fileExists(path))
	require.Len(t, d.Attachments(), 1)
	assert.Equal(t, "a2", d.Attachments()[0].ID)

	_, ok := d.Preview("a1")
	assert.False(t, ok)
}

func TestDraft_FinishReturnsSetAndReleasesAll(t *testing.T) {
	d := NewDraft()
	h := newPreview(t, "scan.pdf")
	path := h.Path()
	d.Add(models.Attachment{ID: "a1"}, h)

	attachments, err := d.Finish()
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.False(t, fileExists(path))
	assert.Empty(t, d.Attachments())
}

func TestDraft_DiscardReleasesAll(t *testing.T) {
	d := NewDraft()
	h1 := newPreview(t, "a.pdf")
	h2 := newPreview(t, "b.pdf")
	p1, p2 := h1.Path(), h2.Path()
	d.Add(models.Attachment{ID: "a1"}, h1)
	d.Add(models.Attachment{ID: "a2"}, h2)

	require.NoError(t, d.Discard())
	assert.False(t, fileExists(p1))
	assert.False(t, fileExists(p2))
	assert.Empty(t, d.Attachments())
}
