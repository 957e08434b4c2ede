// Package forms validates and normalizes user-submitted input before it
// reaches the content or session layers.
package forms

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

var validate = validator.New()

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
var tagsPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,.-]+$`)

func init() {
	_ = validate.RegisterValidation("slugchars", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("tagchars", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || tagsPattern.MatchString(value)
	})
}

// PostInput is the submitted post form. Tags arrive as one comma-separated
// string and are split during normalization.
type PostInput struct {
	Title    string `json:"title" validate:"required,min=5,max=100"`
	Slug     string `json:"slug" validate:"omitempty,min=3,slugchars"`
	Content  string `json:"content" validate:"required"`
	Excerpt  string `json:"excerpt" validate:"required,min=50,max=300"`
	Category string `json:"category" validate:"required"`
	Tags     string `json:"tags" validate:"omitempty,tagchars"`
	Status   string `json:"status" validate:"required,oneof=draft published"`

	// Pre-uploaded image, by opaque id. Optional.
	FeaturedImageID string `json:"featured_image_id"`
}

// PostPatch is a partial edit. Absent fields stay nil and are never sent
// to the store; the slug is not editable.
type PostPatch struct {
	Title    *string `json:"title" validate:"omitempty,min=5,max=100"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,min=50,max=300"`
	Category *string `json:"category" validate:"omitempty,min=1"`
	Tags     *string `json:"tags" validate:"omitempty,tagchars"`
	Status   *string `json:"status" validate:"omitempty,oneof=draft published"`

	FeaturedImageID *string `json:"featured_image_id"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=50"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=5,max=100"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

func ValidatePost(input PostInput) map[string]string {
	return FieldErrors(validate.Struct(input))
}

func ValidatePostPatch(input PostPatch) map[string]string {
	return FieldErrors(validate.Struct(input))
}

func ValidateLogin(input LoginInput) map[string]string {
	return FieldErrors(validate.Struct(input))
}

func ValidateRegister(input RegisterInput) map[string]string {
	return FieldErrors(validate.Struct(input))
}

func ValidateContact(input ContactInput) map[string]string {
	return FieldErrors(validate.Struct(input))
}

// DeriveSlug produces a URL slug from the post title. It only applies when
// creating a post: a slug is an identifier and never changes on edit.
func DeriveSlug(title string) string {
	return slug.Make(title)
}

// SplitTags turns the submitted comma-separated tag string into a trimmed,
// de-duplicated slice. Order of first appearance is preserved.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// FieldErrors flattens validator errors into a field -> message map
// suitable for the API error envelope's details object.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[strings.ToLower(fieldErr.Field())] = message(fieldErr)
	}
	return fields
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldErr.Param() + " characters"
	case "max":
		return "must be at most " + fieldErr.Param() + " characters"
	case "oneof":
		return "must be one of: " + fieldErr.Param()
	case "slugchars":
		return "may only contain lowercase letters, numbers, and hyphens"
	case "tagchars":
		return "contains invalid characters"
	}
	return "is invalid"
}
