package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestError_WritesDetailAndAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	Error(c, http.StatusNotFound, "User not found", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !c.IsAborted() {
		t.Error("context not aborted")
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "User not found" || body["request_id"] != "rid-1" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["errors"]; ok {
		t.Error("errors should be omitted when nil")
	}
}

func TestSuccess_WritesBareBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, 0, map[string]int{"id": 1})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"id":1}` {
		t.Errorf("body = %s", got)
	}
}
