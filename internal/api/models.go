package api

import (
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
)

// WritePostRequest is the body of POST /api/posts. Tags may be an empty array
// but must be present; each tag must be non-empty.
type WritePostRequest struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body"  validate:"required"`
	Tags  []string `json:"tags"  validate:"required,dive,required"`
}

// UpdatePostRequest is the body of PATCH /api/posts/{id}. Absent fields are
// left unchanged; present fields follow the WritePostRequest rules.
type UpdatePostRequest struct {
	Title *string   `json:"title" validate:"omitnil,min=1"`
	Body  *string   `json:"body"  validate:"omitnil,min=1"`
	Tags  *[]string `json:"tags"  validate:"omitnil,dive,required"`
}

// Patch converts the request into a domain patch.
func (r UpdatePostRequest) Patch() domain.PostPatch {
	patch := domain.PostPatch{Title: r.Title, Body: r.Body}
	if r.Tags != nil {
		patch.Tags = *r.Tags
		patch.SetTags = true
	}
	return patch
}

// PostResponse is the wire form of a post.
type PostResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Tags          []string  `json:"tags"`
	PublishedDate time.Time `json:"published_date"`
	AuthorID      string    `json:"author_id,omitempty"`
}

func postToResponse(post *domain.Post) PostResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Body:          post.Body,
		Tags:          tags,
		PublishedDate: post.PublishedDate,
		AuthorID:      post.AuthorID,
	}
}

func postsToResponse(posts []*domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postToResponse(p))
	}
	return out
}

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
