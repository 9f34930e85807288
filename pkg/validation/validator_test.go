package validation

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type address struct {
	City string `json:"city" binding:"required"`
}

type signup struct {
	Email   string  `json:"email" binding:"required,email"`
	Name    string  `json:"name" binding:"required,max=5"`
	Limit   int     `json:"limit" binding:"gte=1,lte=100"`
	Address address `json:"address"`
}

func TestToDetails_ValidationErrors(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&signup{Email: "nope", Name: "toolong", Limit: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	got := ToDetails(err)
	want := map[string]string{
		"email":        "must be a valid email address",
		"name":         "must be at most 5 characters",
		"limit":        "must be greater than or equal to 1",
		"address.city": "is required",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestToDetails_DecodeErrors(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	syntaxErr := json.Unmarshal([]byte(`{"name":`), &v)
	typeErr := json.Unmarshal([]byte(`{"name":1}`), &v)
	_, numErr := strconv.Atoi("abc")

	if got := ToDetails(syntaxErr); got["payload"] != "invalid json" {
		t.Errorf("syntax = %v", got)
	}
	if got := ToDetails(typeErr); got["name"] != "must be a string" {
		t.Errorf("type = %v", got)
	}
	if got := ToDetails(numErr); got["query"] == "" {
		t.Errorf("num = %v", got)
	}
	if ToDetails(nil) != nil {
		t.Error("nil error should give nil details")
	}
}

type credentials struct {
	Password string `json:"password" binding:"required,pwd"`
}

func TestPwd_CountsBytes(t *testing.T) {
	Init()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "ascii at limit", password: strings.Repeat("a", 72)},
		{name: "ascii over limit", password: strings.Repeat("a", 73), wantErr: true},
		{name: "multi-byte under rune limit", password: strings.Repeat("é", 40), wantErr: true},
		{name: "multi-byte within limit", password: strings.Repeat("é", 36)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&credentials{Password: tt.password})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && ToDetails(err)["password"] != "must be between 1 and 72 bytes" {
				t.Errorf("details = %v", ToDetails(err))
			}
		})
	}
}
