package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

type googleDrive struct {
	service *drive.Service
}

// NewGoogleDriveStorage returns a new client to execute file operations
// with Google Drive.
func NewGoogleDriveStorage(credentialsFile, oauthToken string) (FileStorage, error) {
	b, err := ioutil.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file [%s], error %q", credentialsFile, err)
	}
	config, err := google.ConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client configuration from file [%s], error %q", credentialsFile, err)
	}
	f, err := os.Open(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open oauth token file [%s], error %q", oauthToken, err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err = json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to bind OAuth token, error %q", err)
	}
	client := config.Client(context.Background(), tok)
	service, err := drive.New(client)
	if err != nil {
		return nil, fmt.Errorf("could not create Google Drive service, error %q", err)
	}
	return &googleDrive{
		service: service,
	}, nil
}

// Upload creates the file under the given folder and returns the
// created file ID. The bucket argument for Google Drive is the
// folder ID.
func (gd *googleDrive) Upload(b []byte, bucket, fileName string) (string, error) {
	f := &drive.File{
		MimeType: "application/octet-stream",
		Name:     fileName,
		Parents:  []string{bucket},
	}
	buffer := new(bytes.Buffer)
	if _, err := buffer.Write(b); err != nil {
		return "", fmt.Errorf("failed to copy file content to temporary buffer, error %q", err)
	}
	created, err := gd.service.Files.Create(f).Media(buffer).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// FileExists checks if file exists. If file exists
// it returns true, else false
func (gd *googleDrive) FileExists(bucket, fileName string) bool {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", fileName, bucket)
	list, err := gd.service.Files.List().Q(query).Fields("files(id)").PageSize(1).Do()
	if err != nil {
		return false
	}
	return len(list.Files) > 0
}
