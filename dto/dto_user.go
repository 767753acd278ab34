package dto

import "strings"

type RegisterReq struct {
	Name      string `json:"name"      validate:"required,min=2,max=30"   example:"Jane Doe"`
	Email     string `json:"email"     validate:"required,email"          example:"jane@example.com"`
	Password  string `json:"password"  validate:"required,min=6,max=30"   example:"secret1"`
	Password2 string `json:"password2" validate:"required,eqfield=Password" example:"secret1"`
}

func (r *RegisterReq) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RegisterReq) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":      "Name field is required",
		"name.min":           "Name must be between 2 and 30 characters",
		"name.max":           "Name must be between 2 and 30 characters",
		"email.required":     "Email field is required",
		"email.email":        "Email is invalid",
		"password.required":  "Password field is required",
		"password.min":       "Password must be at least 6 characters",
		"password.max":       "Password must be at most 30 characters",
		"password2.required": "Confirm Password field is required",
		"password2.eqfield":  "Passwords must match",
	}
}

type LoginReq struct {
	Email    string `json:"email"    validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required"       example:"secret1"`
}

func (r *LoginReq) Trim() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginReq) ValidationMessages() map[string]string {
	return map[string]string{
		"email.required":    "Email field is required",
		"email.email":       "Email is invalid",
		"password.required": "Password field is required",
	}
}

type LoginResp struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token"   example:"Bearer eyJhbGciOiJIUzI1NiIs..."`
}

type CurrentUserResp struct {
	ID    string `json:"id"    example:"66c6248b98c56c39f018e7d2"`
	Name  string `json:"name"  example:"Jane Doe"`
	Email string `json:"email" example:"jane@example.com"`
}
