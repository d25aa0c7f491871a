package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSkillsTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	c := NewSkillsController(nil)
	router.POST("/api/skills/practice", c.Practice)
	return router
}

func postPractice(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/skills/practice", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPracticeRequestValidation(t *testing.T) {
	router := newSkillsTestRouter()

	t.Run("rating above five is rejected", func(t *testing.T) {
		w := postPractice(router, `{"session_id":"s1","skill_name":"mindful_breathing","duration_minutes":10,"completion_rating":10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rating zero is rejected", func(t *testing.T) {
		w := postPractice(router, `{"session_id":"s1","skill_name":"mindful_breathing","duration_minutes":10,"completion_rating":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing skill name is rejected", func(t *testing.T) {
		w := postPractice(router, `{"session_id":"s1","duration_minutes":10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero duration is rejected", func(t *testing.T) {
		w := postPractice(router, `{"session_id":"s1","skill_name":"mindful_breathing","duration_minutes":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
