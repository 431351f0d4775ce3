package security

import (
	"strings"
	"sync"

	"UChat/tools/apiresp"
	"UChat/tools/errs"
	toolsec "UChat/tools/security"

	"github.com/gin-gonic/gin"
)

// —— context key ——
// 下游 handler 统一用它读取已验证的应用标识
const CtxAppKey = "appID"

type Options struct {
	Secret []byte
	Alg    string // 默认 HS256
}

var (
	mu         sync.RWMutex
	configured *Options
)

// Configure 启动时注入共享密钥，之后 DefaultOptions 返回同一份配置。
func Configure(opts *Options) {
	mu.Lock()
	defer mu.Unlock()
	configured = opts
}

func DefaultOptions() *Options {
	mu.RLock()
	defer mu.RUnlock()
	return configured
}

// Middleware 校验 Authorization: Bearer 令牌。
// 令牌里是调用方应用的身份；玩家身份始终走请求体。
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts == nil {
			opts = DefaultOptions()
		}
		if opts == nil || len(opts.Secret) == 0 {
			apiresp.Fail(c, errs.ErrInternal.WithDetail("auth middleware not configured"))
			c.Abort()
			return
		}

		token := bearerToken(c)
		if token == "" {
			apiresp.Fail(c, errs.ErrTokenInvalid)
			c.Abort()
			return
		}

		appID, err := toolsec.Verify(toolsec.Options{Secret: opts.Secret, Alg: opts.Alg}, token)
		if err != nil {
			apiresp.Fail(c, errs.ErrTokenInvalid.WithDetail(err.Error()))
			c.Abort()
			return
		}

		c.Set(CtxAppKey, appID)
		c.Next()
	}
}

// 兼容 Authorization: Bearer xxx 与裸 authorization 头
func bearerToken(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" {
		authz = strings.TrimSpace(c.GetHeader("authorization"))
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return authz
}
