package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/service"
)

type moodEntryPayload struct {
	Mood      string   `json:"mood"`
	Intensity int      `json:"intensity"`
	Energy    int      `json:"energy"`
	Note      string   `json:"note"`
	Tags      []string `json:"tags"`
	Date      string   `json:"date"`
}

// GetMoodCatalog 返回心情选项与标签词表。
func (a *API) GetMoodCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"moods": service.MoodOptions,
		"tags":  service.MoodTags,
	})
}

// ListMoodEntries 返回全部历史，最近保存的在前。
func (a *API) ListMoodEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": a.moods.History()})
}

// GetMoodEntry 返回指定日期的记录，用于回填编辑表单。
func (a *API) GetMoodEntry(c *gin.Context) {
	date := c.Param("date")
	if normalized, err := service.NormalizeMoodDate(date); err == nil {
		date = normalized
	}
	a.respondMoodEntry(c, date)
}

// GetTodayMood 返回今天的记录。
func (a *API) GetTodayMood(c *gin.Context) {
	a.respondMoodEntry(c, a.now().Format(service.MoodDateLayout))
}

func (a *API) respondMoodEntry(c *gin.Context, date string) {
	entry, ok := a.moods.LoadForDate(date)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"date":  date,
			"error": a.errorMessage(c, "mood_not_found"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// SaveMoodEntry 按日期插入或替换记录。
func (a *API) SaveMoodEntry(c *gin.Context) {
	var payload moodEntryPayload
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	entry, err := a.moods.Save(service.MoodDraft{
		Mood:      payload.Mood,
		Intensity: payload.Intensity,
		Energy:    payload.Energy,
		Note:      payload.Note,
		Tags:      payload.Tags,
		Date:      payload.Date,
	})
	switch {
	case errors.Is(err, service.ErrMoodRequired):
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "mood_required"))
		return
	case errors.Is(err, service.ErrMoodDateInvalid):
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "mood_date_invalid"))
		return
	case err != nil:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.errorMessage(c, "save_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry,
		"stats": a.moods.Stats(a.now()),
	})
}

// GetMoodStats 返回平均分、连续天数与条目数。
func (a *API) GetMoodStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": a.moods.Stats(a.now())})
}
