package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// BodyPreviewLength is the number of characters kept in list previews.
const BodyPreviewLength = 200

// previewEllipsis is appended to truncated list previews.
const previewEllipsis = "..."

// Validation errors for Post
var (
	ErrEmptyPostTitle = errors.New("post title cannot be empty")
	ErrEmptyPostBody  = errors.New("post body cannot be empty")
	ErrEmptyPostTag   = errors.New("post tags cannot contain empty strings")
)

// Post is a blog entry. AuthorID is empty only for records created outside
// the authenticated write path.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Tags          []string  `json:"tags"`
	PublishedDate time.Time `json:"published_date"`
	AuthorID      string    `json:"author_id,omitempty"`
}

// PostPatch holds the fields of a partial update. Nil fields are left untouched.
type PostPatch struct {
	Title *string
	Body  *string
	Tags  []string
	// SetTags distinguishes "tags omitted" from "tags set to an empty list".
	SetTags bool
}

// NewPost creates a Post owned by authorID. Tags are copied so the caller's
// slice can be reused.
func NewPost(authorID, title, body string, tags []string) (*Post, error) {
	post := &Post{
		Title:         title,
		Body:          body,
		Tags:          append([]string{}, tags...),
		PublishedDate: time.Now().UTC(),
		AuthorID:      authorID,
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	return post, nil
}

// Validate checks if the Post has valid data.
func (p *Post) Validate() error {
	if p.Title == "" {
		return ErrEmptyPostTitle
	}
	if p.Body == "" {
		return ErrEmptyPostBody
	}
	for _, tag := range p.Tags {
		if tag == "" {
			return ErrEmptyPostTag
		}
	}
	return nil
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return p.AuthorID != "" && p.AuthorID == userID
}

// Apply merges the patch into the post in place.
func (p *Post) Apply(patch PostPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	if patch.SetTags {
		p.Tags = append([]string{}, patch.Tags...)
	}
}

// IsEmpty reports whether the patch changes nothing.
func (patch PostPatch) IsEmpty() bool {
	return patch.Title == nil && patch.Body == nil && !patch.SetTags
}

// Preview returns a copy of the post whose body is cut to BodyPreviewLength
// characters with an ellipsis when it is longer. The receiver is not modified.
func (p *Post) Preview() *Post {
	preview := *p
	preview.Tags = append([]string{}, p.Tags...)
	preview.Body = TruncateBody(p.Body)
	return &preview
}

// TruncateBody shortens body to BodyPreviewLength characters plus an ellipsis.
// Bodies of BodyPreviewLength characters or fewer are returned unchanged.
func TruncateBody(body string) string {
	if utf8.RuneCountInString(body) <= BodyPreviewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:BodyPreviewLength]) + previewEllipsis
}
