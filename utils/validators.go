// File: /utils/validators.go
package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	TitleMinLen    = 5
	TitleMaxLen    = 100
	ContentMinLen  = 10
	ContentMaxLen  = 5000
	TagsMax        = 10
	CommentMinLen  = 5
	CommentMaxLen  = 1000
	PasswordMinLen = 6
	NameMinLen     = 2
	NameMaxLen     = 50
)

// FieldError scopes a validation failure to a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-scoped failures. It blocks submission
// before any store or network call.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldFor returns the message for a field, or "" when the field passed.
func (e *ValidationError) FieldFor(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, format string, args ...interface{}) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fe fieldErrors) result() *ValidationError {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidatePost checks a post create payload. Title 5-100 characters, content
// 10-5000 characters, 1-10 non-empty tags.
func ValidatePost(title, content string, tags []string) *ValidationError {
	var errs fieldErrors
	checkTitle(&errs, title)
	checkContent(&errs, content)
	checkTags(&errs, tags)
	return errs.result()
}

// ValidatePostUpdate checks only the fields an update provides.
func ValidatePostUpdate(title, content *string, tags *[]string) *ValidationError {
	var errs fieldErrors
	if title != nil {
		checkTitle(&errs, *title)
	}
	if content != nil {
		checkContent(&errs, *content)
	}
	if tags != nil {
		checkTags(&errs, *tags)
	}
	return errs.result()
}

// ValidateComment checks a comment payload. Content 5-1000 characters.
func ValidateComment(content string) *ValidationError {
	var errs fieldErrors
	if n := utf8.RuneCountInString(strings.TrimSpace(content)); n < CommentMinLen || n > CommentMaxLen {
		errs.add("content", "must be between %d and %d characters", CommentMinLen, CommentMaxLen)
	}
	return errs.result()
}

// ValidateRegistration checks a sign-up payload. Display name 2-50
// characters, password at least 6 characters and matching its confirmation.
func ValidateRegistration(name, email, password, confirm string) *ValidationError {
	var errs fieldErrors
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < NameMinLen || n > NameMaxLen {
		errs.add("name", "must be between %d and %d characters", NameMinLen, NameMaxLen)
	}
	if !IsValidEmail(email) {
		errs.add("email", "must be a valid email address")
	}
	if utf8.RuneCountInString(password) < PasswordMinLen {
		errs.add("password", "must be at least %d characters", PasswordMinLen)
	}
	if password != confirm {
		errs.add("confirm_password", "passwords do not match")
	}
	return errs.result()
}

func checkTitle(errs *fieldErrors, title string) {
	if n := utf8.RuneCountInString(strings.TrimSpace(title)); n < TitleMinLen || n > TitleMaxLen {
		errs.add("title", "must be between %d and %d characters", TitleMinLen, TitleMaxLen)
	}
}

func checkContent(errs *fieldErrors, content string) {
	if n := utf8.RuneCountInString(content); n < ContentMinLen || n > ContentMaxLen {
		errs.add("content", "must be between %d and %d characters", ContentMinLen, ContentMaxLen)
	}
}

func checkTags(errs *fieldErrors, tags []string) {
	if len(tags) < 1 || len(tags) > TagsMax {
		errs.add("tags", "must contain between 1 and %d tags", TagsMax)
		return
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errs.add("tags", "tags must not be empty")
			return
		}
	}
}

func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
