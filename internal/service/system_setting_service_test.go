package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/mindwell/internal/db"
	"gorm.io/gorm"
)

func setupSystemSettingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:settings-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSystemSettingServiceDefaults(t *testing.T) {
	svc := NewSystemSettingService(setupSystemSettingTestDB(t))

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.CompanionName != defaultCompanionName {
		t.Fatalf("expected default companion name, got %q", settings.CompanionName)
	}
	if settings.ChatProvider != "" || settings.OpenAIAPIKey != "" || settings.ChatSystemPrompt != "" {
		t.Fatalf("expected empty overrides, got %#v", settings)
	}

	var nilSvc *SystemSettingService
	if got, err := nilSvc.GetSettings(); err != nil || got.CompanionName != defaultCompanionName {
		t.Fatalf("nil service should return defaults, got %#v err=%v", got, err)
	}
}

func TestSystemSettingServiceUpdate(t *testing.T) {
	svc := NewSystemSettingService(setupSystemSettingTestDB(t))

	updated, err := svc.UpdateSettings(SystemSettingsInput{
		CompanionName:    "  ",
		ChatProvider:     "OpenAI",
		OpenAIAPIKey:     " sk-123 ",
		ChatSystemPrompt: "Be gentle.",
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.CompanionName != defaultCompanionName || updated.ChatProvider != ChatProviderOpenAI || updated.OpenAIAPIKey != "sk-123" {
		t.Fatalf("unexpected sanitized settings %#v", updated)
	}

	if _, err := svc.UpdateSettings(SystemSettingsInput{CompanionName: "Buddy", ChatProvider: "unknown"}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.CompanionName != "Buddy" || settings.ChatProvider != "" {
		t.Fatalf("upsert did not overwrite values: %#v", settings)
	}
	if settings.OpenAIAPIKey != "sk-123" {
		t.Fatalf("blank key should keep the stored one, got %q", settings.OpenAIAPIKey)
	}
}

func TestSystemSettingServiceClearAPIKey(t *testing.T) {
	svc := NewSystemSettingService(setupSystemSettingTestDB(t))

	if _, err := svc.UpdateSettings(SystemSettingsInput{ChatProvider: "openai", OpenAIAPIKey: "sk-old"}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	kept, err := svc.UpdateSettings(SystemSettingsInput{CompanionName: "Buddy", ChatProvider: "openai"})
	if err != nil {
		t.Fatalf("update without key failed: %v", err)
	}
	if kept.OpenAIAPIKey != "sk-old" {
		t.Fatalf("expected stored key in result, got %q", kept.OpenAIAPIKey)
	}

	rotated, err := svc.UpdateSettings(SystemSettingsInput{ChatProvider: "openai", OpenAIAPIKey: "sk-new"})
	if err != nil || rotated.OpenAIAPIKey != "sk-new" {
		t.Fatalf("expected rotated key, got %q err=%v", rotated.OpenAIAPIKey, err)
	}

	cleared, err := svc.UpdateSettings(SystemSettingsInput{ChatProvider: "openai", OpenAIAPIKey: "sk-ignored", ClearOpenAIAPIKey: true})
	if err != nil {
		t.Fatalf("clear key failed: %v", err)
	}
	// 显式清除时忽略同时传入的 Key
	settings, _ := svc.GetSettings()
	if cleared.OpenAIAPIKey != "" || settings.OpenAIAPIKey != "" {
		t.Fatalf("expected key cleared, got result=%q stored=%q", cleared.OpenAIAPIKey, settings.OpenAIAPIKey)
	}
}

func TestSystemSettingServiceTestChatConnection(t *testing.T) {
	svc := NewSystemSettingService(nil)
	svc.SetOpenAIBaseURL("https://example.test/v1/")

	if err := svc.TestChatConnection(context.Background(), ChatProviderOpenAI, ""); !errors.Is(err, ErrChatAPIKeyMissing) {
		t.Fatalf("expected ErrChatAPIKeyMissing, got %v", err)
	}

	svc.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://example.test/v1/models" {
			t.Fatalf("unexpected endpoint %s", r.URL.String())
		}
		return jsonResponse(http.StatusOK, `{"data":[]}`), nil
	}})
	if err := svc.TestChatConnection(context.Background(), ChatProviderOpenAI, "sk-1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	svc.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, "no models"), nil
	}})
	if err := svc.TestChatConnection(context.Background(), ChatProviderOllama, ""); err == nil {
		t.Fatal("expected error for 404")
	}
}
