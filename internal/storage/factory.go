package storage

import "strings"

// Config selects and configures a storage backend. Backend "local" (the
// default) keeps logo cards on disk; "s3" targets any S3-compatible service.
type Config struct {
	Backend   string // "local" or "s3"
	LocalDir  string
	PublicURL string
	S3        S3Config
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: backend selection plus backend-specific settings.
//
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		dir := cfg.LocalDir
		if dir == "" {
			dir = "uploaded_images"
		}
		return NewLocalStorage(dir, cfg.PublicURL)
	default:
		s3cfg := cfg.S3
		if s3cfg.Type == "" {
			s3cfg.Type = detectStorageType(s3cfg.Endpoint)
		}
		if s3cfg.PublicURL == "" {
			s3cfg.PublicURL = cfg.PublicURL
		}
		return NewS3Storage(&s3cfg)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
