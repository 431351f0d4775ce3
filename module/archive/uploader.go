package archive

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Uploader 离站快照上传端。上传只是尽力而为，
// 失败由调度器记日志吞掉，换成任何对象存储客户端都行。
type Uploader interface {
	Upload(ctx context.Context, s *Snapshot) error
}

// MongoUploader 把快照整条写进 Mongo 集合。
type MongoUploader struct {
	coll *mongo.Collection
}

func NewMongoUploader(db *mongo.Database, collection string) *MongoUploader {
	return &MongoUploader{coll: db.Collection(collection)}
}

func (u *MongoUploader) Upload(ctx context.Context, s *Snapshot) error {
	_, err := u.coll.InsertOne(ctx, s)
	return err
}
