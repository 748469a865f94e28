package constants

// environment variables
const (
	EnvLogLevel        = "DATA_LANDER_LOG_LEVEL"
	EnvURL             = "URL"
	EnvDownloadURLs    = "DOWNLOAD_URLS"
	EnvBucket          = "S3_BUCKET_NAME"
	EnvRegion          = "S3_REGION"
	EnvStorageBackend  = "DATA_LANDER_STORAGE"
	EnvStorageEndpoint = "DATA_LANDER_STORAGE_ENDPOINT"
	EnvPrefix          = "DATA_LANDER_PREFIX"
	EnvMode            = "DATA_LANDER_MODE"
	EnvAllowList       = "DATA_LANDER_ALLOW_LIST"
	EnvTmpDir          = "DATA_LANDER_TMP_DIR"
)
