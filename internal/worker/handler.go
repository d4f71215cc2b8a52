package worker

import (
	"context"
	"io"
	"log/slog"
	"time"

	"resumeBuilder/internal/events"
)

const presignTTL = 24 * time.Hour

// ObjectStore 是任务处理器需要的对象存储能力，由 *storage.Client 实现。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignDownload(ctx context.Context, objectKey string, duration time.Duration, filename string) (string, error)
}

// Deps 汇总任务处理器的依赖。
type Deps struct {
	Storage   ObjectStore
	Publisher events.Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

func (d Deps) notifier() notifier {
	return notifier{publisher: d.publisher(), logger: d.logger(), now: d.now()}
}

func (d Deps) publisher() events.Publisher {
	if d.Publisher == nil {
		return events.Discard{}
	}
	return d.Publisher
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) now() func() time.Time {
	if d.Now == nil {
		return time.Now
	}
	return d.Now
}

func downloadName(title, ext string) string {
	if title == "" {
		title = "resume"
	}
	return title + ext
}
