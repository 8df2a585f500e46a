package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/service"
	"github.com/mindwell/internal/store"
)

type testEnv struct {
	api    *API
	engine *gin.Engine
	store  *store.MemoryStore
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
}

func newTestEnv(t *testing.T, replier service.Replier) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryStore()
	api := NewAPI(Dependencies{
		Routines: service.NewTaskRegistry(mem, &service.SequenceIDAllocator{}),
		Moods:    service.NewMoodJournal(mem, fixedClock),
		Replier:  replier,
		Now:      fixedClock,
	})

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/tasks", api.ListTasks)
	r.POST("/api/tasks", api.CreateTask)
	r.GET("/api/tasks/progress", api.GetTaskProgress)
	r.POST("/api/tasks/:id/toggle", api.ToggleTask)
	r.POST("/api/tasks/:id/priority", api.ToggleTaskPriority)
	r.PUT("/api/tasks/:id/title", api.UpdateTaskTitle)
	r.PUT("/api/tasks/:id/mood", api.SetTaskMood)
	r.DELETE("/api/tasks/:id", api.DeleteTask)
	r.GET("/api/mood/catalog", api.GetMoodCatalog)
	r.GET("/api/mood/entries", api.ListMoodEntries)
	r.POST("/api/mood/entries", api.SaveMoodEntry)
	r.GET("/api/mood/entries/:date", api.GetMoodEntry)
	r.GET("/api/mood/today", api.GetTodayMood)
	r.GET("/api/mood/stats", api.GetMoodStats)
	r.POST("/api/chat", api.Chat)
	r.POST("/api/conversation/messages", api.PostConversationMessage)
	r.POST("/api/conversation/listen", api.ListenConversation)
	r.PUT("/api/settings", api.UpdateSystemSettings)
	r.GET("/api/settings", api.GetSystemSettings)

	return &testEnv{api: api, engine: r, store: mem}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func echoReplier() service.Replier {
	return service.ReplierFunc(func(_ context.Context, req service.ChatRequest) (string, error) {
		return "**echo** " + req.Text, nil
	})
}
