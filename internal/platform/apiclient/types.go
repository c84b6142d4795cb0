package apiclient

import (
	"encoding/json"
	"strings"
)

type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	University  string `json:"university,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// DisplayName prefers the first name, then the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	University  string `json:"university,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// BookInfo is the metadata the backend finds for an ISBN.
type BookInfo struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories"`
	Language      string   `json:"language,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
}

type ISBNLookup struct {
	Found   bool      `json:"found"`
	Book    *BookInfo `json:"book_info"`
	Message string    `json:"message"`
}

// AnnouncementPayload is the body of both create and update.
type AnnouncementPayload struct {
	ISBN            string   `json:"isbn"`
	Price           float64  `json:"price"`
	MarketPrice     float64  `json:"market_price,omitempty"`
	Condition       string   `json:"condition"`
	Category        string   `json:"category,omitempty"`
	Description     string   `json:"description,omitempty"`
	Location        string   `json:"location,omitempty"`
	CustomImages    []string `json:"custom_images,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
}

// AnnouncedBook is the book row embedded in an announcement. The backend
// stores authors and categories as comma separated strings.
type AnnouncedBook struct {
	ID            int    `json:"id"`
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle,omitempty"`
	Authors       string `json:"authors,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Description   string `json:"description,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Categories    string `json:"categories,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

type Announcement struct {
	ID           int           `json:"id"`
	BookID       int           `json:"book_id"`
	UserID       int           `json:"user_id"`
	Price        float64       `json:"price"`
	Condition    string        `json:"condition"`
	Status       string        `json:"status"`
	Description  string        `json:"description,omitempty"`
	CustomImages Images        `json:"custom_images"`
	Location     string        `json:"location,omitempty"`
	ViewsCount   int           `json:"views_count"`
	CreatedAt    string        `json:"created_at,omitempty"`
	Book         AnnouncedBook `json:"book"`
}

// Images decodes custom_images, which the backend sends either as a JSON
// array, a JSON-encoded array inside a string, or a comma separated string.
type Images []string

func (im *Images) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*im = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*im = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			*im = list
			return nil
		}
	}
	*im = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*im = append(*im, part)
		}
	}
	return nil
}

type UploadedImage struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

type ContactRequest struct {
	AnnouncementID int    `json:"announcement_id"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Message        string `json:"message"`
}
