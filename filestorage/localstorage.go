package filestorage

import (
	"fmt"
	"io/ioutil"
	"os"
)

// localStorage saves files on the local filesystem. The bucket
// argument is a directory path.
type localStorage struct {
}

// NewLocalStorage returns a new local storage instance
func NewLocalStorage() FileStorage {
	return &localStorage{}
}

// Upload writes the file content under the bucket directory,
// creating the directory when needed
func (ls *localStorage) Upload(b []byte, bucket, fileName string) (string, error) {
	_, err := os.Stat(bucket) // checking if bucket exists
	if os.IsNotExist(err) {
		err := os.MkdirAll(bucket, 0755)
		if err != nil {
			return "", fmt.Errorf("failed to create directory %s, error %q", bucket, err)
		}
	}
	name := fmt.Sprintf("%s/%s", bucket, fileName)
	if err := ioutil.WriteFile(name, b, 0644); err != nil {
		return "", fmt.Errorf("failed to save file %s on path %s, error %q", fileName, name, err)
	}
	return name, nil
}

// FileExists checks if file exists. If file exists
// it returns true, else false
func (ls *localStorage) FileExists(bucket, fileName string) bool {
	_, err := os.Stat(fmt.Sprintf("%s/%s", bucket, fileName))
	return err == nil
}
