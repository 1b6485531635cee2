// File: /utils/validators_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostBoundaries(t *testing.T) {
	assert.Nil(t, ValidatePost("Valid", strings.Repeat("x", 10), []string{"go"}))

	verr := ValidatePost("abcd", strings.Repeat("x", 10), []string{"go"})
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("title"))
	assert.Empty(t, verr.FieldFor("content"))

	verr = ValidatePost("Valid title", "short", []string{"go"})
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("content"))

	tags := make([]string, 11)
	for i := range tags {
		tags[i] = "t"
	}
	verr = ValidatePost("Valid title", strings.Repeat("x", 10), tags)
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("tags"))

	verr = ValidatePost("Valid title", strings.Repeat("x", 10), []string{"go", "  "})
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("tags"))

	verr = ValidatePost("Valid title", strings.Repeat("x", 10), nil)
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("tags"))
}

func TestValidatePostUpdateChecksOnlyProvidedFields(t *testing.T) {
	badTitle := "abcd"
	assert.Nil(t, ValidatePostUpdate(nil, nil, nil))

	verr := ValidatePostUpdate(&badTitle, nil, nil)
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "title", verr.Fields[0].Field)
}

func TestValidateComment(t *testing.T) {
	assert.Nil(t, ValidateComment("long enough"))

	verr := ValidateComment("hi")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("content"))

	verr = ValidateComment(strings.Repeat("x", 1001))
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("content"))
}

func TestValidateRegistration(t *testing.T) {
	assert.Nil(t, ValidateRegistration("Anna", "anna@example.com", "secret1", "secret1"))

	verr := ValidateRegistration("A", "anna@example.com", "secret1", "secret1")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("name"))

	verr = ValidateRegistration("Anna", "not-an-email", "secret1", "secret1")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("email"))

	verr = ValidateRegistration("Anna", "anna@example.com", "12345", "12345")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("password"))

	verr = ValidateRegistration("Anna", "anna@example.com", "secret1", "secret2")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.FieldFor("confirm_password"))
}
