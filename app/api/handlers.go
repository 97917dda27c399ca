package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/database"
	"github.com/lysyi3m/oscar-feed/app/ical"
	"github.com/lysyi3m/oscar-feed/app/tasks"
)

// NewHandler creates the API handler. shiftRepo may be nil when the archive is disabled.
func NewHandler(cfg *config.Config, calendars CalendarStore, shiftRepo database.ShiftRepository,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		cfg:       cfg,
		calendars: calendars,
		shiftRepo: shiftRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetCalendar(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ical.Extension)

	// only configured users map to files, which keeps paths inside the output dir
	if _, ok := h.cfg.GetUser(name); !ok {
		c.Status(http.StatusNotFound)
		return
	}

	path := h.calendars.Path(name)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Calendar not generated yet", "user", name)
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to stat calendar", "user", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read calendar", "user", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	c.Header("X-Calendar-Name", name)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   h.version,
		"users":     len(h.cfg.Users),
		"archive":   h.shiftRepo != nil,
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListUsers(c *gin.Context) {
	users := make([]map[string]interface{}, 0, len(h.cfg.Users))

	for _, user := range h.cfg.Users {
		userInfo := map[string]interface{}{
			"name":       user.Name,
			"shift_name": user.ShiftName,
			"feeds":      len(user.Feeds),
		}

		if info, err := os.Stat(h.calendars.Path(user.Name)); err == nil {
			userInfo["calendar_updated_at"] = info.ModTime().Format(time.RFC3339)
		}

		if h.shiftRepo != nil {
			if count, err := h.shiftRepo.GetShiftCount(user.Name); err == nil {
				userInfo["archived_shifts"] = count
			}
		}

		users = append(users, userInfo)
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) APISyncUser(c *gin.Context) {
	name := c.Param("name")

	user, ok := h.cfg.GetUser(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.scheduler.EnqueueUser(user); err != nil {
		slog.Error("Failed to enqueue sync", "user", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue sync"})
		return
	}

	slog.Info("Sync requested", "user", name)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "user": name})
}
