package handler

import (
	"testing"

	"github.com/mindwell/internal/locale"
)

func TestLocalizedMessageFallsBackToEnglish(t *testing.T) {
	if got := localizedMessage(locale.LanguageMarathi, "task_not_found"); got != "कार्य सापडले नाही" {
		t.Fatalf("unexpected marathi message %q", got)
	}
	if got := localizedMessage("fr-FR", "task_not_found"); got != "Task not found" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := localizedMessage(locale.LanguageHindi, "unknown_key"); got != "unknown_key" {
		t.Fatalf("unknown key should echo, got %q", got)
	}
}

func TestEveryMessageHasEnglish(t *testing.T) {
	for key, texts := range messageCatalog {
		if texts[locale.LanguageEnglish] == "" {
			t.Fatalf("message %q lacks english text", key)
		}
	}
}
