package objectstore

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ManagerDownloaderAPI is the part of the aws S3 manager downloader used to stage
// ROOT files from s3:// locators into the session scratch directory. Tests mock it.
type ManagerDownloaderAPI interface {
	Download(
		ctx context.Context,
		w io.WriterAt,
		input *s3.GetObjectInput,
		options ...func(*manager.Downloader),
	) (n int64, err error)
}
