package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/spark-root/coffea-slurm/internal/config"
)

// Store fetches objects into a local directory so they can be opened
// by readers that need random access
type Store struct {
	DownloaderAPI ManagerDownloaderAPI
}

// NewStore creates a store backed by the aws S3 manager downloader. When
// conf.Local is set the client points to localstack.
func NewStore(conf *config.Config) (*Store, error) {
	var cfg aws.Config
	var err error

	if conf.Local {
		cfg, err = config.InitLocalCfg(conf.Endpoint)
	} else {
		cfg, err = config.InitCfg(conf.Region)
	}
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Store{
		DownloaderAPI: manager.NewDownloader(s3Client),
	}, nil
}

// Download writes the object into dir and returns the local file name.
// Every call stages to its own file, so objects sharing a base name can be
// downloaded concurrently. The file is removed again if the download fails.
func (s *Store) Download(ctx context.Context, object Object, dir string) (string, error) {
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s", uuid.New().String(), filepath.Base(object.Key)))

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	n, err := s.DownloaderAPI.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(object.Bucket),
		Key:    aws.String(object.Key),
	})
	if err != nil {
		os.Remove(filename)
		return "", err
	}

	log.WithFields(log.Fields{
		"Object": object.String(),
		"Bytes":  n,
	}).Debug("Downloaded object")

	return filename, nil
}
