package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"UChat/tools/apiresp"
	"UChat/tools/errs"
	toolsec "UChat/tools/security"

	"github.com/gin-gonic/gin"
)

// Handler 用共享密钥换应用令牌。持有密钥的是游戏服务器进程，
// 不是终端玩家——玩家不需要也拿不到令牌。
type Handler struct {
	appSecret []byte
	opts      toolsec.Options
}

func New(appSecret string, opts toolsec.Options) *Handler {
	return &Handler{appSecret: []byte(appSecret), opts: opts}
}

type tokenReq struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// Token POST /auth/token
func (h *Handler) Token(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresp.Fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	appID := strings.TrimSpace(req.AppID)
	if appID == "" {
		apiresp.Fail(c, errs.ErrArgs.WithDetail("app_id is required"))
		return
	}
	if len(h.appSecret) == 0 ||
		subtle.ConstantTimeCompare([]byte(req.AppSecret), h.appSecret) != 1 {
		apiresp.Fail(c, errs.ErrTokenInvalid.WithDetail("bad app secret"))
		return
	}
	token, expireAt, err := toolsec.Generate(h.opts, appID)
	if err != nil {
		apiresp.Fail(c, errs.ErrInternal.WrapMsg("sign token"))
		return
	}
	apiresp.OK(c, gin.H{
		"token":      token,
		"expires_at": expireAt.UTC().Format(time.RFC3339),
	})
}
