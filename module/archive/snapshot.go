package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	chatmodel "UChat/module/chat/model"
)

// Snapshot 一次归档的自描述快照：时间戳、条数、按 id 升序的完整消息列表。
// 文件名由创建时间决定，同一时刻的快照名字必然相同。
type Snapshot struct {
	Name      string               `json:"name" bson:"name"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	Count     int                  `json:"count" bson:"count"`
	MaxID     int64                `json:"max_id" bson:"max_id"`
	Messages  []*chatmodel.Message `json:"messages" bson:"messages"`
}

func NewSnapshot(msgs []*chatmodel.Message) *Snapshot {
	now := time.Now().UTC()
	return &Snapshot{
		Name:      "chat_archive_" + now.Format("20060102T150405Z") + ".json",
		CreatedAt: now,
		Count:     len(msgs),
		MaxID:     msgs[len(msgs)-1].ID,
		Messages:  msgs,
	}
}

// WriteFile 先写临时文件再改名，目录里永远不会出现半截快照。
func (s *Snapshot) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, s.Name+".tmp*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	path := filepath.Join(dir, s.Name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
