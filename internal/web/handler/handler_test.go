package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Name  string `validate:"required"`
	Code  string `validate:"len=3"`
	Email string `validate:"omitempty,email"`
}

func TestValidate(t *testing.T) {
	errs := Validator.Validate(input{Code: "ab", Email: "nope"})
	require.Len(t, errs, 3)

	assert.Equal(t, "input.Name", errs[0].FailedField)
	assert.Equal(t, "required", errs[0].Tag)

	msg := ValidationMessage(errs)
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "Code must satisfy len=3")
	assert.Contains(t, msg, "Email is not a valid email")
}

func TestValidate_OK(t *testing.T) {
	assert.Empty(t, Validator.Validate(input{Name: "x", Code: "abc"}))
	assert.Nil(t, ValidationErrors(nil))
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := ParseID(c)
		if err != nil {
			return APIError(c, fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path string
		want int
	}{
		{"/42", http.StatusOK},
		{"/0", http.StatusBadRequest},
		{"/-1", http.StatusBadRequest},
		{"/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.path)
		_ = resp.Body.Close()
	}
}
