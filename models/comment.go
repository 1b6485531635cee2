// File: /models/comment.go
package models

import (
	"time"

	"inkwell-api/store"
)

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func CommentFromDocument(doc store.Document) Comment {
	return Comment{
		ID:         CoerceString(doc["_id"]),
		PostID:     CoerceString(doc["postId"]),
		Content:    CoerceString(doc["content"]),
		AuthorID:   CoerceString(doc["authorId"]),
		AuthorName: CoerceString(doc["authorName"]),
		CreatedAt:  CoerceTime(doc["createdAt"]),
		UpdatedAt:  CoerceTime(doc["updatedAt"]),
	}
}

func (c Comment) Document() store.Document {
	return store.Document{
		"postId":     c.PostID,
		"content":    c.Content,
		"authorId":   c.AuthorID,
		"authorName": c.AuthorName,
	}
}
