package handler

import (
	"strings"

	"UChat/module/moderation/service"
	"UChat/tools/apiresp"
	"UChat/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth *service.Authority
}

func New(auth *service.Authority) *Handler {
	return &Handler{auth: auth}
}

type muteReq struct {
	UserID     string `json:"user_id"` // 操作者
	TargetUser string `json:"target_user"`
	Reason     string `json:"reason"`
}

// Mute POST /mute
func (h *Handler) Mute(c *gin.Context) {
	var req muteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	e, err := h.auth.Mute(c.Request.Context(), req.UserID, req.TargetUser, req.Reason)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, e)
}

// Unmute POST /unmute
func (h *Handler) Unmute(c *gin.Context) {
	var req muteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.auth.Unmute(c.Request.Context(), req.UserID, req.TargetUser); err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"target_user": req.TargetUser})
}

// Banned GET /banned?user_id=
// 名单以持久层为准，staff 专用。
func (h *Handler) Banned(c *gin.Context) {
	callerID := strings.TrimSpace(c.Query("user_id"))
	list, err := h.auth.Muted(c.Request.Context(), callerID)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"muted": list, "count": len(list)})
}

type actionReq struct {
	UserID string `json:"user_id"`
}

// Clear POST /clear
func (h *Handler) Clear(c *gin.Context) {
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	deleted, err := h.auth.Clear(c.Request.Context(), req.UserID)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"deleted": deleted})
}

// TriggerArchive POST /archive/trigger
// 只受理触发，不等归档跑完。
func (h *Handler) TriggerArchive(c *gin.Context) {
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.auth.TriggerArchive(req.UserID); err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"status": "accepted"})
}

// Shutdown POST /shutdown
// 只发停机通告，进程退出交给部署环境。
func (h *Handler) Shutdown(c *gin.Context) {
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.auth.NotifyShutdown(req.UserID); err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"status": "notified"})
}
