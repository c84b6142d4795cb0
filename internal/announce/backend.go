package announce

//go:generate mockgen -source=backend.go -destination=mock_backend_test.go -package=announce

import (
	"context"
	"io"

	"dzkitab/internal/platform/apiclient"
)

// Backend is the slice of the REST API the wizard talks to.
// *apiclient.Client satisfies it.
type Backend interface {
	LookupISBN(ctx context.Context, isbn string) (*apiclient.ISBNLookup, error)
	Categories(ctx context.Context) ([]string, error)
	GetAnnouncement(ctx context.Context, id string) (*apiclient.Announcement, error)
	CreateAnnouncement(ctx context.Context, p apiclient.AnnouncementPayload) (*apiclient.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id string, p apiclient.AnnouncementPayload) (*apiclient.Announcement, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (*apiclient.UploadedImage, error)
}

var _ Backend = (*apiclient.Client)(nil)
