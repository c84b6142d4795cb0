package announce

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"dzkitab/internal/platform/apiclient"
)

const uploadConcurrency = 4

// Result is what a successful submit produced.
type Result struct {
	ID            int
	Created       bool
	FailedUploads []string
}

// Payload validates the draft and builds the request body without images.
// It never touches the network.
func (d Draft) Payload() (apiclient.AnnouncementPayload, error) {
	if d.Step != StepPhotos {
		return apiclient.AnnouncementPayload{}, ErrWrongStep
	}
	if !d.Book.HasIdentity() {
		return apiclient.AnnouncementPayload{}, ErrNoIdentity
	}
	isbn, err := NormalizeISBN(d.Book.ISBN)
	if err != nil {
		return apiclient.AnnouncementPayload{}, err
	}
	if strings.TrimSpace(d.Details.Category) == "" {
		return apiclient.AnnouncementPayload{}, ErrNoCategory
	}
	a := d.Assessment()
	if !(a.Price > 0) || math.IsInf(a.Price, 0) {
		return apiclient.AnnouncementPayload{}, ErrNonPositivePrice
	}
	if len(d.Photos) > MaxPhotos {
		return apiclient.AnnouncementPayload{}, ErrTooManyPhotos
	}
	return apiclient.AnnouncementPayload{
		ISBN:            isbn,
		Price:           a.Price,
		MarketPrice:     d.Details.MarketPrice,
		Condition:       string(a.Condition),
		Category:        d.Details.Category,
		Description:     strings.TrimSpace(d.Details.Description),
		Location:        d.Details.Location,
		PageCount:       d.Book.PageCount,
		PublicationDate: d.Book.PublishedDate,
	}, nil
}

// Submit validates the draft, uploads the pending images and creates or
// updates the announcement. A failed upload is logged and left out of the
// payload; the remaining images still go through.
func (w *Wizard) Submit(ctx context.Context) (Result, error) {
	d := w.Draft()
	payload, err := d.Payload()
	if err != nil {
		return Result{}, err
	}

	images, failed := w.uploadAll(ctx, d)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	payload.CustomImages = images

	var (
		a   *apiclient.Announcement
		res Result
	)
	if d.Editing() {
		a, err = w.backend.UpdateAnnouncement(ctx, d.EditID, payload)
		if err != nil {
			return Result{}, fmt.Errorf("update announcement %s: %w", d.EditID, err)
		}
	} else {
		a, err = w.backend.CreateAnnouncement(ctx, payload)
		if err != nil {
			return Result{}, fmt.Errorf("create announcement: %w", err)
		}
		res.Created = true
	}
	res.ID = a.ID
	if res.ID == 0 && d.Editing() {
		res.ID, _ = strconv.Atoi(d.EditID)
	}
	res.FailedUploads = failed

	w.log.InfoContext(ctx, "announcement submitted",
		slog.Int("id", res.ID),
		slog.Bool("created", res.Created),
		slog.Int("images", len(images)),
		slog.Int("failed_uploads", len(failed)),
	)
	return res, nil
}

// uploadAll sends the manual cover and every pending photo, at most
// uploadConcurrency at a time. The returned URLs keep draft order with the
// cover first.
func (w *Wizard) uploadAll(ctx context.Context, d Draft) ([]string, []string) {
	var queue []Photo
	if d.Cover != nil {
		queue = append(queue, *d.Cover)
	}
	queue = append(queue, d.Photos...)

	urls := make([]string, len(queue))
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i, p := range queue {
		if !p.Pending() {
			urls[i] = p.URL
			continue
		}
		g.Go(func() error {
			up, err := w.backend.UploadImage(ctx, p.Name, bytes.NewReader(p.Data))
			if err != nil {
				w.log.WarnContext(ctx, "photo upload failed",
					slog.String("filename", p.Name),
					slog.Any("error", err),
				)
				return nil
			}
			urls[i] = up.URL
			return nil
		})
	}
	_ = g.Wait()

	var out, failed []string
	for i, u := range urls {
		if u == "" {
			failed = append(failed, queue[i].Name)
			continue
		}
		out = append(out, u)
	}
	return out, failed
}
