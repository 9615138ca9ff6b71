package config

import "github.com/spf13/viper"

const (
	databaseURLVar = "DATABASE_URL"

	s3BucketVar       = "S3_BUCKET"
	s3RegionVar       = "S3_REGION"
	s3EndpointVar     = "S3_ENDPOINT"
	s3AccessKeyVar    = "S3_ACCESS_KEY"
	s3SecretKeyVar    = "S3_SECRET_KEY"
	s3PublicURLVar    = "S3_PUBLIC_URL"
	maxUploadBytesVar = "MAX_UPLOAD_BYTES"
)

type DatabaseConfig interface {
	// GetDatabaseURL returns the Postgres DSN. Empty selects the in-memory stores.
	GetDatabaseURL() string
}

type StorageConfig interface {
	GetS3Bucket() string
	GetS3Region() string
	GetS3Endpoint() string
	GetS3AccessKey() string
	GetS3SecretKey() string
	GetS3PublicURL() string
	GetMaxUploadBytes() int64
}

type Database struct {
	v *viper.Viper
}

var _ DatabaseConfig = Database{}

func (d Database) GetDatabaseURL() string {
	return d.v.GetString(databaseURLVar)
}

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

func (s Storage) GetS3Bucket() string {
	return s.v.GetString(s3BucketVar)
}

func (s Storage) GetS3Region() string {
	return s.v.GetString(s3RegionVar)
}

func (s Storage) GetS3Endpoint() string {
	return s.v.GetString(s3EndpointVar)
}

func (s Storage) GetS3AccessKey() string {
	return s.v.GetString(s3AccessKeyVar)
}

func (s Storage) GetS3SecretKey() string {
	return s.v.GetString(s3SecretKeyVar)
}

// GetS3PublicURL is the prefix used to build object URLs. Falls back to the endpoint/bucket.
func (s Storage) GetS3PublicURL() string {
	return s.v.GetString(s3PublicURLVar)
}

func (s Storage) GetMaxUploadBytes() int64 {
	return s.v.GetInt64(maxUploadBytesVar)
}
