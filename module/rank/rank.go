package rank

import (
	"sort"

	"UChat/global/config"
)

// 角色等级：等级是唯一的授权信号。
const (
	LevelMember = 0
	LevelStaff  = 2
	LevelOwner  = 3
)

// RoleInfo 某个身份解析出来的角色信息（展示属性 + 等级）。
type RoleInfo struct {
	Rank  string `json:"rank"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
	Level int    `json:"level"`
}

// DefaultRole 未知身份一律回落到普通成员。
var DefaultRole = RoleInfo{Rank: "Member", Emoji: "👤", Color: "#CCCCCC", Level: LevelMember}

// Resolver 身份 -> 角色的纯查表解析器，启动时构造一次，之后只读。
type Resolver struct {
	table map[string]RoleInfo
}

func NewResolver(entries map[string]config.RankEntry) *Resolver {
	table := make(map[string]RoleInfo, len(entries))
	for id, e := range entries {
		table[id] = RoleInfo{Rank: e.Rank, Emoji: e.Emoji, Color: e.Color, Level: e.Level}
	}
	return &Resolver{table: table}
}

// Resolve 全函数：永不失败，未知身份返回 DefaultRole。
func (r *Resolver) Resolve(userID string) RoleInfo {
	if info, ok := r.table[userID]; ok {
		return info
	}
	return DefaultRole
}

func (r *Resolver) IsStaff(userID string) bool {
	return r.Resolve(userID).Level >= LevelStaff
}

func (r *Resolver) IsOwner(userID string) bool {
	return r.Resolve(userID).Level >= LevelOwner
}

// Entry 用于 /ranks 列表输出。
type Entry struct {
	UserID string `json:"user_id"`
	RoleInfo
}

// List 返回配置过的全部角色，按 user_id 排序保证输出稳定。
func (r *Resolver) List() []Entry {
	out := make([]Entry, 0, len(r.table))
	for id, info := range r.table {
		out = append(out, Entry{UserID: id, RoleInfo: info})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
