package filestorage

// FileStorage saves converted files on a storage backend, like the
// local filesystem, GCS, S3 or Google Drive.
type FileStorage interface {
	// Upload saves the given bytes under bucket/fileName and returns
	// the location where the file was stored.
	Upload(b []byte, bucket, fileName string) (string, error)

	// FileExists checks if file exists. If file exists
	// it returns true, else false
	FileExists(bucket, fileName string) bool
}
