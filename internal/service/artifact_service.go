package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 产物集合名。测验与学习模块分别存放
const (
	QuizCollection   = "tests"
	ModuleCollection = "learning_modules"
)

// ArtifactStore 生成产物的不透明键值存储。
// Put写入负载并返回随机ID，Get按ID原样取回。ID一经签发不可变，
// 永远解析到最后一次以该ID写入的负载（本实现中产物只写一次）
type ArtifactStore interface {
	Put(ctx context.Context, collection string, payload interface{}) (string, error)
	Get(ctx context.Context, collection string, id string, out interface{}) error
}

// artifactEnvelope 存储格式：ID随负载一并落盘，便于排查孤儿产物
type artifactEnvelope struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// MinioArtifactStore MinIO对象存储实现，对象键为 <collection>/<uuid>.json。
// 可选Redis读缓存：产物不可变，缓存无需失效逻辑
type MinioArtifactStore struct {
	client   *minio.Client
	redis    *redis.Client
	bucket   string
	cacheTTL time.Duration
}

func NewMinioArtifactStore(cfg *config.ArtifactConfig, rdb *redis.Client) (*MinioArtifactStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.CacheTTLMinute) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	store := &MinioArtifactStore{
		client:   client,
		redis:    rdb,
		bucket:   cfg.MinioBucket,
		cacheTTL: ttl,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func objectKey(collection, id string) string {
	return fmt.Sprintf("%s/%s.json", collection, id)
}

func cacheKey(collection, id string) string {
	return fmt.Sprintf("artifact:%s:%s", collection, id)
}

func (s *MinioArtifactStore) Put(ctx context.Context, collection string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	id := model.GenerateUUID()
	envelope, err := json.Marshal(artifactEnvelope{ID: id, Data: data})
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectKey(collection, id),
		bytes.NewReader(envelope), int64(len(envelope)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}

	return id, nil
}

func (s *MinioArtifactStore) Get(ctx context.Context, collection string, id string, out interface{}) error {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey(collection, id)).Bytes(); err == nil {
			return json.Unmarshal(cached, out)
		}
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(collection, id), minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s/%s", util.ErrArtifactNotFound, collection, id)
		}
		return err
	}

	var envelope artifactEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}

	if s.redis != nil {
		s.redis.Set(ctx, cacheKey(collection, id), []byte(envelope.Data), s.cacheTTL)
	}

	return json.Unmarshal(envelope.Data, out)
}
