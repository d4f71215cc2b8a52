package storage

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound 表示对象键不存在。
var ErrObjectNotFound = errors.New("object not found")

// IsNoSuchKey 判断错误是否表示对象不存在：ErrObjectNotFound，或 S3/MinIO 的 NoSuchKey/404。
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}

	var minioErr minio.ErrorResponse
	if !errors.As(err, &minioErr) {
		return false
	}
	switch minioErr.Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return minioErr.StatusCode == http.StatusNotFound
}
