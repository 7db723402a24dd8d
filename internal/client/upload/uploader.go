// Package upload sends attachment bytes to whichever storage collaborator
// the deployment uses: the action API's upload endpoint (default) or an
// S3-compatible object store. Both return the same attachment descriptor.
// Uploads have no offline path; callers must check connectivity first.
package upload

import (
	"context"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/client/remote"
)

// MaxSize is the attachment size ceiling. The gateway enforces it before
// any network call; the devserver repeats the check server-side.
const MaxSize = 10 << 20

// Uploader accepts bytes and returns a descriptor for the stored object.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (models.Attachment, error)
}

// ActionUploader relays uploads through the action API endpoint.
type ActionUploader struct {
	client remote.Client
}

func NewActionUploader(client remote.Client) *ActionUploader {
	return &ActionUploader{client: client}
}

func (u *ActionUploader) Upload(ctx context.Context, filename string, data []byte) (models.Attachment, error) {
	return u.client.UploadAttachment(ctx, filename, data)
}

// Allowed reports whether the coarse type passes the upload allow-list.
// Executables and unclassifiable files stay out.
func Allowed(t models.CoarseType) bool {
	switch t {
	case models.TypePDF, models.TypeDocx, models.TypeXlsx, models.TypeImage:
		return true
	default:
		return false
	}
}
