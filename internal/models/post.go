package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Post struct {
	ID       bson.ObjectID `json:"_id"      bson:"_id,omitempty"`
	UserID   bson.ObjectID `json:"user"     bson:"user"`
	Text     string        `json:"text"     bson:"text"`
	Name     string        `json:"name"     bson:"name"`
	Avatar   string        `json:"avatar"   bson:"avatar"`
	Likes    []Like        `json:"likes"    bson:"likes"`
	Comments []Comment     `json:"comments" bson:"comments"`
	Date     time.Time     `json:"date"     bson:"date"`
}

type Like struct {
	ID     bson.ObjectID `json:"_id"  bson:"_id"`
	UserID bson.ObjectID `json:"user" bson:"user"`
}

type Comment struct {
	ID     bson.ObjectID `json:"_id"    bson:"_id"`
	UserID bson.ObjectID `json:"user"   bson:"user"`
	Text   string        `json:"text"   bson:"text"`
	Name   string        `json:"name"   bson:"name"`
	Avatar string        `json:"avatar" bson:"avatar"`
	Date   time.Time     `json:"date"   bson:"date"`
}

// LikeIndex returns the position of the first like by userID, or -1.
func (p *Post) LikeIndex(userID string) int {
	for i, l := range p.Likes {
		if l.UserID.Hex() == userID {
			return i
		}
	}
	return -1
}

func (p *Post) HasLiked(userID string) bool {
	return p.LikeIndex(userID) >= 0
}

// CommentIndex returns the position of the comment with the given hex id, or -1.
func (p *Post) CommentIndex(commentID string) int {
	for i, c := range p.Comments {
		if c.ID.Hex() == commentID {
			return i
		}
	}
	return -1
}

func (p *Post) OwnedBy(userID string) bool {
	return p.UserID.Hex() == userID
}

// Normalize replaces nil slices so the document always serializes likes and comments as arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
