package apiresp

import (
	"net/http"

	"UChat/logger"
	"UChat/tools/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应信封。所有接口都用它，成功失败同构。
type Response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, &Response{Success: true, Code: 0, Msg: "ok", Data: data})
}

// Fail 把业务错误翻译成信封 + HTTP 状态码。
// 非 CodeError 的错误一律按内部错误处理，细节只进日志不出网。
func Fail(c *gin.Context, err error) {
	ce := errs.Coded(err)
	if ce == nil {
		logger.Error("unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
		ce = errs.ErrInternal
	}
	c.JSON(httpStatus(ce.Code), &Response{Success: false, Code: ce.Code, Msg: ce.Msg})
}

func httpStatus(code int) int {
	switch code {
	case errs.ArgsErrorCode:
		return http.StatusBadRequest
	case errs.NoPermissionCode, errs.TokenInvalidCode:
		return http.StatusUnauthorized
	case errs.MutedCode, errs.CannotMuteStaffCode, errs.RoomPrivateCode:
		return http.StatusForbidden
	case errs.DuplicateCode, errs.AlreadyMutedCode, errs.RoomExistsCode:
		return http.StatusConflict
	case errs.NotFoundCode, errs.NotMutedCode, errs.RoomNotFoundCode:
		return http.StatusNotFound
	case errs.StorageCode:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
