package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/pkg/helpers"
	"github.com/oksasatya/users-api/pkg/response"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"email taken", application.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
		{"username taken", fmt.Errorf("create: %w", application.ErrUsernameTaken), http.StatusBadRequest, "Username already taken"},
		{"bad credentials", application.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
		{"not found", application.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"bad pagination", application.ErrInvalidPagination, http.StatusUnprocessableEntity, validationDetail},
		{"password too long", helpers.ErrPasswordTooLong, http.StatusUnprocessableEntity, validationDetail},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			writeError(c, helpers.NewDiscardLogger(), tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body response.ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", body.Detail, tt.wantDetail)
			}
		})
	}
}

func TestWriteError_PasswordTooLongNamesField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	writeError(c, nil, helpers.ErrPasswordTooLong)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Errors["password"] != "must be between 1 and 72 bytes" {
		t.Errorf("errors = %v", body.Errors)
	}
}
