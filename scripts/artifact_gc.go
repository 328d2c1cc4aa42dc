// 手动触发产物存储垃圾回收脚本
//
// 模块修订成功后旧产物对象会留在 MinIO 里不再被任何记录引用（修订只替换指针，
// 不删除旧对象，保证失败回退永远有东西可回）。该脚本清理这些孤儿对象。
//
// 用法: go run scripts/artifact_gc.go [-dry-run]

package main

import (
	"context"
	"flag"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/database"
	"learnpath_backend/pkg/logger"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gorm.io/gorm"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "只列出孤儿对象，不删除")
	flag.Parse()

	// 走与服务进程相同的加载路径，带下划线的键和环境变量覆盖才能生效
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	client, err := minio.New(cfg.Artifact.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Artifact.MinioAccessID, cfg.Artifact.MinioSecret, ""),
		Secure: cfg.Artifact.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("MinIO 连接失败: %v", err)
	}

	ctx := context.Background()
	referenced, err := referencedArtifactIDs(db)
	if err != nil {
		log.Fatalf("查询引用中的产物失败: %v", err)
	}
	log.Printf("数据库中引用的产物数: %d", len(referenced))

	removed, kept := 0, 0
	for object := range client.ListObjects(ctx, cfg.Artifact.MinioBucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			log.Fatalf("列举对象失败: %v", object.Err)
		}

		id := idFromObjectKey(object.Key)
		if id == "" || referenced[id] {
			kept++
			continue
		}

		if *dryRun {
			fmt.Printf("孤儿对象: %s\n", object.Key)
			removed++
			continue
		}

		if err := client.RemoveObject(ctx, cfg.Artifact.MinioBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			log.Printf("删除 %s 失败: %v", object.Key, err)
			continue
		}
		removed++
	}

	log.Printf("完成: 保留 %d, 清理 %d (dry-run=%v)", kept, removed, *dryRun)
}

func referencedArtifactIDs(db *gorm.DB) (map[string]bool, error) {
	ids := map[string]bool{}

	var testIDs []string
	if err := db.Model(&model.Test{}).Pluck("artifact_id", &testIDs).Error; err != nil {
		return nil, err
	}
	var moduleIDs []string
	if err := db.Model(&model.LearningModule{}).Pluck("artifact_id", &moduleIDs).Error; err != nil {
		return nil, err
	}

	for _, id := range append(testIDs, moduleIDs...) {
		ids[id] = true
	}
	return ids, nil
}

// idFromObjectKey 对象键形如 <collection>/<uuid>.json
func idFromObjectKey(key string) string {
	slash := strings.LastIndex(key, "/")
	if slash < 0 || !strings.HasSuffix(key, ".json") {
		return ""
	}
	return strings.TrimSuffix(key[slash+1:], ".json")
}
