// Package compose tracks the attachment set of a message being written.
// Uploaded attachments are referenced by URL, but the composer also keeps a
// local preview copy on disk so the user can open what they just attached
// without a round trip. Preview files are temporary and must be released on
// every path out of the composer.
package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fmchong/intramail/internal/client/models"
)

// PreviewHandle owns one temporary preview file. Release is idempotent.
type PreviewHandle struct {
	mu       sync.Mutex
	path     string
	released bool
}

// NewPreview writes data to a fresh temp file named after the original so
// desktop viewers pick the right application.
func NewPreview(filename string, data []byte) (*PreviewHandle, error) {
	dir, err := os.MkdirTemp("", "intramail-preview-")
	if err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("write preview: %w", err)
	}
	return &PreviewHandle{path: path}, nil
}

// Path returns the preview file location, or "" after release.
func (h *PreviewHandle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return ""
	}
	return h.path
}

// Release deletes the preview file. Safe to call more than once.
func (h *PreviewHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	return os.RemoveAll(filepath.Dir(h.path))
}

// Draft is the pending attachment set of one message under composition.
type Draft struct {
	mu          sync.Mutex
	attachments []models.Attachment
	previews    map[string]*PreviewHandle
}

func NewDraft() *Draft {
	return &Draft{previews: map[string]*PreviewHandle{}}
}

// Add registers an uploaded attachment together with its local preview.
// A nil preview is fine; not every attachment kind is previewable.
func (d *Draft) Add(a models.Attachment, preview *PreviewHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachments = append(d.attachments, a)
	if preview != nil {
		d.previews[a.ID] = preview
	}
}

// Attachments returns a copy of the pending set in attach order.
func (d *Draft) Attachments() []models.Attachment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Attachment(nil), d.attachments...)
}

// Preview returns the preview handle for an attachment, if one exists.
func (d *Draft) Preview(attachmentID string) (*PreviewHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.previews[attachmentID]
	return h, ok
}

// Remove drops one attachment from the draft and releases its preview.
func (d *Draft) Remove(attachmentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range d.attachments {
		if a.ID == attachmentID {
			d.attachments = append(d.attachments[:i], d.attachments[i+1:]...)
			break
		}
	}
	if h, ok := d.previews[attachmentID]; ok {
		delete(d.previews, attachmentID)
		return h.Release()
	}
	return nil
}

// Finish hands the attachment set to the caller for sending and releases
// every preview. The draft is empty afterwards.
func (d *Draft) Finish() ([]models.Attachment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	attachments := d.attachments
	err := d.releaseAllLocked()
	d.attachments = nil
	return attachments, err
}

// Discard abandons the draft, releasing every preview.
func (d *Draft) Discard() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachments = nil
	return d.releaseAllLocked()
}

func (d *Draft) releaseAllLocked() error {
	var firstErr error
	for id, h := range d.previews {
		if err := h.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.previews, id)
	}
	return firstErr
}
