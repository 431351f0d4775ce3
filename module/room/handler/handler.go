package handler

import (
	"UChat/module/room/service"
	"UChat/tools/apiresp"
	"UChat/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	rooms *service.Service
}

func New(rooms *service.Service) *Handler {
	return &Handler{rooms: rooms}
}

type roomReq struct {
	UserID  string `json:"user_id"`
	Code    string `json:"code"`
	Private bool   `json:"private"`
}

// Create POST /rooms
func (h *Handler) Create(c *gin.Context) {
	var req roomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	r, err := h.rooms.CreateRoom(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, r)
}

// Join POST /rooms/join
func (h *Handler) Join(c *gin.Context) {
	var req roomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.rooms.Join(c.Request.Context(), req.UserID, req.Code); err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"code": req.Code})
}

// Members GET /rooms/members?code=&user_id=
func (h *Handler) Members(c *gin.Context) {
	list, err := h.rooms.Members(c.Request.Context(), c.Query("user_id"), c.Query("code"))
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, gin.H{"members": list, "count": len(list)})
}

// Privacy POST /rooms/privacy
func (h *Handler) Privacy(c *gin.Context) {
	var req roomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	r, err := h.rooms.SetPrivacy(c.Request.Context(), req.UserID, req.Code, req.Private)
	if err != nil {
		apiresp.Fail(c, err)
		return
	}
	apiresp.OK(c, r)
}
