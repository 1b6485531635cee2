// File: /models/like.go
package models

import (
	"time"

	"inkwell-api/store"
)

// Like is a per-(post, user) marker record. Its existence is the "has this
// user liked this post" fact; it makes like/unlike idempotent and queryable
// per user and is not otherwise surfaced.
type Like struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeID is the deterministic marker id, keyed by user within the post scope.
func LikeID(postID, userID string) string {
	return postID + ":" + userID
}

func LikeFromDocument(doc store.Document) Like {
	return Like{
		PostID:    CoerceString(doc["postId"]),
		UserID:    CoerceString(doc["userId"]),
		CreatedAt: CoerceTime(doc["createdAt"]),
	}
}

func (l Like) Document() store.Document {
	return store.Document{
		"postId": l.PostID,
		"userId": l.UserID,
	}
}
