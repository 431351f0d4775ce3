package handler

import (
	"strconv"
	"strings"
	"time"

	chatmodel "UChat/module/chat/model"
	"UChat/module/chat/service"
	"UChat/module/presence"
	"UChat/tools/apiresp"
	"UChat/tools/errs"

	"github.com/gin-gonic/gin"
)

// MuteCounter 统计接口要用的禁言人数。
type MuteCounter interface {
	MutedCount() int
}

type Handler struct {
	chat     *service.Service
	presence *presence.Tracker
	mutes    MuteCounter
}

func New(chat *service.Service, tracker *presence.Tracker, mutes MuteCounter) *Handler {
	return &Handler{chat: chat, presence: tracker, mutes: mutes}
}

type sendReq struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Room     string `json:"room"`
	Game     string `json:"game"`
	Type     string `json:"type"`
}

// Send POST /send
func (h *Handler) Send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.chat.Append(c.Request.Context(), service.AppendInput{
		UserID:      req.UserID,
		DisplayName: req.Username,
		Body:        req.Message,
		Room:        req.Room,
		Game:        req.Game,
		Kind:        req.Type,
	})
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	if m == nil {
		// heartbeat：刷新在线状态，不产生消息
		apiresp.OK(c, gin.H{"type": chatmodel.KindHeartbeat})
		return
	}
	apiresp.OK(c, m)
}

// List GET /messages?since=&limit=&room=
// 客户端带上一次的最大 id 轮询，since=0 重放全量。
func (h *Handler) List(c *gin.Context) {
	since, err := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("since", "0")), 10, 64)
	if err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail("since must be an integer"))
		return
	}
	limit, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", "0")))
	if err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail("limit must be an integer"))
		return
	}
	list, err := h.chat.ReadSince(c.Request.Context(), since, limit, c.Query("room"))
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	lastID := since
	if n := len(list); n > 0 {
		lastID = list[n-1].ID
	}
	apiresp.OK(c, gin.H{
		"messages": list,
		"count":    len(list),
		"last_id":  lastID,
	})
}

// Stats GET /stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.chat.Stats(c.Request.Context())
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	active, err := h.presence.Active(c.Request.Context(), 0)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{
		"messages_stored": st.StoredMessages,
		"messages_today":  st.MessagesToday,
		"unique_users":    st.DistinctAuthors,
		"active_users":    len(active),
		"muted_users":     h.mutes.MutedCount(),
		"uptime_seconds":  st.UptimeSeconds,
		"server_start":    st.ServerStart.UTC().Format(time.RFC3339),
	})
}
