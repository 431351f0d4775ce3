package service

import (
	"context"
	"regexp"
	"strings"

	roommodel "UChat/module/room/model"
	"UChat/tools/errs"
)

// 房间码：2~16 位字母数字下划线连字符
var codeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{2,16}$`)

// Service 房间注册表：建房、加入、私密开关。
type Service struct {
	store roommodel.Store
}

func NewService(store roommodel.Store) *Service {
	return &Service{store: store}
}

// CreateRoom 建房（默认公开），房主自动成为第一个成员。
func (s *Service) CreateRoom(ctx context.Context, ownerID, code string) (*roommodel.Room, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errs.ErrArgs.WithDetail("user_id is required")
	}
	code = strings.TrimSpace(code)
	if !codeRe.MatchString(code) {
		return nil, errs.ErrArgs.WithDetail("room code must be 2-16 chars [A-Za-z0-9_-]")
	}

	r := &roommodel.Room{Code: code, OwnerID: ownerID}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Join 加入房间。私有房只有房主能进；重复加入是成功的 no-op。
func (s *Service) Join(ctx context.Context, userID, code string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errs.ErrArgs.WithDetail("user_id is required")
	}
	r, err := s.store.Get(ctx, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if r.Private && userID != r.OwnerID {
		return errs.ErrRoomPrivate
	}
	return s.store.AddMember(ctx, r.Code, userID)
}

// Members 返回房间成员（至少包含房主）。私有房只有房主能看名单。
func (s *Service) Members(ctx context.Context, callerID, code string) ([]string, error) {
	r, err := s.store.Get(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if r.Private && strings.TrimSpace(callerID) != r.OwnerID {
		return nil, errs.ErrRoomPrivate
	}
	list, err := s.store.Members(ctx, r.Code)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// SetPrivacy 只有房主能切换私密开关。
func (s *Service) SetPrivacy(ctx context.Context, callerID, code string, private bool) (*roommodel.Room, error) {
	r, err := s.store.Get(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(callerID) != r.OwnerID {
		return nil, errs.ErrNoPermission
	}
	if err := s.store.SetPrivacy(ctx, r.Code, private); err != nil {
		return nil, err
	}
	r.Private = private
	return r, nil
}
