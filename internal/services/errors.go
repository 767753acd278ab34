package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrCommentNotFound   = errors.New("comment does not exist")
	ErrNotOwner          = errors.New("user not authorized")
	ErrAlreadyLiked      = errors.New("user already liked this post")
	ErrNotLiked          = errors.New("user has not yet liked this post")
	ErrNoProfile         = errors.New("user has no profile")
	ErrUserNotFound      = errors.New("user not found")
	ErrPasswordIncorrect = errors.New("password incorrect")
)

// ValidationError carries field -> message pairs for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}
