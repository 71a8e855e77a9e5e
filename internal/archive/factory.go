package archive

import (
	"context"
	"errors"
	"fmt"

	"ideospace/internal/infra/archive/fs"
	"ideospace/internal/infra/archive/memory"
	"ideospace/internal/infra/archive/s3"
	"ideospace/internal/platform/config"
)

// ErrDisabled is returned by Open when the configured driver is "none".
var ErrDisabled = errors.New("archive disabled")

// Open builds the archive Store selected by cfg.
func Open(ctx context.Context, cfg config.Archive) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverNone, "":
		return nil, ErrDisabled
	case DriverMemory:
		return memory.New(), nil
	case DriverFilesystem:
		st, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return st, nil
	case DriverS3:
		st, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", cfg.Driver)
	}
}
