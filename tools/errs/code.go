package errs

// ===== 错误码分段 =====
//
// 500        服务内部错误
// 1000~1099  通用请求错误（参数/权限/冲突/不存在/存储）
// 1100~1199  鉴权
// 1200~1299  禁言/审核
// 1300~1399  房间
const (
	ServerInternalCode = 500

	ArgsErrorCode    = 1001 // 参数缺失或超长
	NoPermissionCode = 1002 // 角色等级不足
	DuplicateCode    = 1003 // 重复写入
	NotFoundCode     = 1004 // 目标不存在
	StorageCode      = 1005 // 存储不可用

	TokenInvalidCode = 1101

	MutedCode           = 1201
	CannotMuteStaffCode = 1202
	AlreadyMutedCode    = 1203
	NotMutedCode        = 1204

	RoomExistsCode   = 1301
	RoomNotFoundCode = 1302
	RoomPrivateCode  = 1303
)

var (
	ErrInternal = NewCodeError(ServerInternalCode, "server error")

	ErrArgs         = NewCodeError(ArgsErrorCode, "missing or invalid argument")
	ErrNoPermission = NewCodeError(NoPermissionCode, "unauthorized")
	ErrDuplicate    = NewCodeError(DuplicateCode, "duplicate entry")
	ErrNotFound     = NewCodeError(NotFoundCode, "not found")
	ErrStorage      = NewCodeError(StorageCode, "storage unavailable")

	ErrTokenInvalid = NewCodeError(TokenInvalidCode, "invalid or expired token")

	ErrMuted           = NewCodeError(MutedCode, "you are muted from the chat")
	ErrCannotMuteStaff = NewCodeError(CannotMuteStaffCode, "cannot mute staff members")
	ErrAlreadyMuted    = NewCodeError(AlreadyMutedCode, "user is already muted")
	ErrNotMuted        = NewCodeError(NotMutedCode, "user was not muted")

	ErrRoomExists   = NewCodeError(RoomExistsCode, "room code already taken")
	ErrRoomNotFound = NewCodeError(RoomNotFoundCode, "room not found")
	ErrRoomPrivate  = NewCodeError(RoomPrivateCode, "room is private")
)
