package main

import (
	"testing"
	"time"

	"github.com/mindwell/internal/service"
	"github.com/mindwell/internal/store"
)

func TestGenerateDemoData(t *testing.T) {
	mem := store.NewMemoryStore()
	today := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	routines := service.NewTaskRegistry(mem, &service.SequenceIDAllocator{})
	moods := service.NewMoodJournal(mem, func() time.Time { return today })

	tasks, entries, err := generate(routines, moods, today)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if tasks != len(demoTasks) || entries != 13 {
		t.Fatalf("unexpected counts: tasks=%d entries=%d", tasks, entries)
	}

	progress := routines.CompletionRatio()
	if progress.Completed != 3 || progress.Total != len(demoTasks) {
		t.Fatalf("unexpected progress %+v", progress)
	}

	history := moods.History()
	if history[0].Date != "2024-05-20" {
		t.Fatalf("expected newest date first, got %s", history[0].Date)
	}
	// 05-10 缺失，连续记录从 05-20 回溯到 05-11
	if streak := moods.CurrentStreak(today); streak != 10 {
		t.Fatalf("expected streak 10, got %d", streak)
	}

	again, _, err := generate(routines, moods, today)
	if err != nil {
		t.Fatalf("second generate returned error: %v", err)
	}
	if again != 0 || len(routines.List()) != len(demoTasks) {
		t.Fatalf("tasks should not be duplicated on rerun")
	}
	if len(moods.History()) != 13 {
		t.Fatalf("mood entries should be replaced, not duplicated")
	}
}
