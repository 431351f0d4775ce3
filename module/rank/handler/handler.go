package handler

import (
	"UChat/module/rank"
	"UChat/tools/apiresp"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ranks *rank.Resolver
}

func New(ranks *rank.Resolver) *Handler {
	return &Handler{ranks: ranks}
}

// Ranks GET /ranks
func (h *Handler) Ranks(c *gin.Context) {
	apiresp.OK(c, gin.H{
		"ranks":   h.ranks.List(),
		"default": rank.DefaultRole,
	})
}
