// File: /models/post.go
package models

import (
	"time"

	"inkwell-api/store"
)

type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Likes      int64     `json:"likes"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostFromDocument coerces a raw store document into the strict post shape.
// Unvalidated store data never flows past this boundary.
func PostFromDocument(doc store.Document) Post {
	post := Post{
		ID:         CoerceString(doc["_id"]),
		Title:      CoerceString(doc["title"]),
		Content:    CoerceString(doc["content"]),
		Tags:       CoerceStringSlice(doc["tags"]),
		Likes:      CoerceInt64(doc["likes"]),
		AuthorID:   CoerceString(doc["authorId"]),
		AuthorName: CoerceString(doc["authorName"]),
		CreatedAt:  CoerceTime(doc["createdAt"]),
		UpdatedAt:  CoerceTime(doc["updatedAt"]),
	}
	if post.Likes < 0 {
		post.Likes = 0
	}
	return post
}

// Document renders the post for a store write. The id and timestamps are
// omitted so the store assigns them; the fallback create path stamps its own
// before writing.
func (p Post) Document() store.Document {
	return store.Document{
		"title":      p.Title,
		"content":    p.Content,
		"tags":       append([]string(nil), p.Tags...),
		"likes":      p.Likes,
		"authorId":   p.AuthorID,
		"authorName": p.AuthorName,
	}
}
