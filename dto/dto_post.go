package dto

import "strings"

// ===== Request =====
type CreatePostReq struct {
	Text   string `json:"text"   validate:"required,min=10,max=300" example:"Anyone tried the new Go iterators yet?"`
	Name   string `json:"name"   example:"Jane Doe"`
	Avatar string `json:"avatar" example:"//www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm"`
}

// Comments share the post payload shape and rules.
type CreateCommentReq = CreatePostReq

func (r *CreatePostReq) Trim() {
	r.Text = strings.TrimSpace(r.Text)
	r.Name = strings.TrimSpace(r.Name)
	r.Avatar = strings.TrimSpace(r.Avatar)
}

func (r *CreatePostReq) ValidationMessages() map[string]string {
	return map[string]string{
		"text.required": "Text field is required",
		"text.min":      "Post must be between 10 and 300 characters",
		"text.max":      "Post must be between 10 and 300 characters",
	}
}

// ===== Response =====
type MsgResponse struct {
	Msg string `json:"msg" example:"posts works"`
}

type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
