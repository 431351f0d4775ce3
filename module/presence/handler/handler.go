package handler

import (
	"strconv"
	"strings"
	"time"

	"UChat/module/presence"
	"UChat/tools/apiresp"
	"UChat/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker *presence.Tracker
}

func New(tracker *presence.Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// Active GET /active?window=
// window 单位秒，缺省用配置窗口。
func (h *Handler) Active(c *gin.Context) {
	var window time.Duration
	if raw := strings.TrimSpace(c.Query("window")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			apiresp.Fail(c, errs.ErrArgs.WithDetail("window must be a positive integer of seconds"))
			return
		}
		window = time.Duration(secs) * time.Second
	}
	list, err := h.tracker.Active(c.Request.Context(), window)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	if window <= 0 {
		window = h.tracker.Window()
	}
	apiresp.OK(c, gin.H{
		"active":         list,
		"count":          len(list),
		"window_seconds": int(window.Seconds()),
	})
}
