package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &res); err != nil {
		return 0, err
	}
	return res.UnreadCount, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var res []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/categories", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) LookupISBN(ctx context.Context, isbn string) (*ISBNLookup, error) {
	var res ISBNLookup
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/isbn/"+url.PathEscape(isbn), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetAnnouncement(ctx context.Context, id string) (*Announcement, error) {
	var res Announcement
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/announcements/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, p AnnouncementPayload) (*Announcement, error) {
	var res Announcement
	if err := c.doJSON(ctx, http.MethodPost, "/api/books/announcements", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateAnnouncement(ctx context.Context, id string, p AnnouncementPayload) (*Announcement, error) {
	var res Announcement
	if err := c.doJSON(ctx, http.MethodPut, "/api/books/announcements/"+url.PathEscape(id), p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UploadImage sends one image as the multipart field "file".
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*UploadedImage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("buffer %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/images/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res UploadedImage
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ContactSeller(ctx context.Context, in ContactRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/messages/contact-seller", in, nil)
}

func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResult, error) {
	var res LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", in, nil)
}
