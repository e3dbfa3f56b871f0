package main

import (
	"archive/zip"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cheggaaa/pb/v3"
	"github.com/matryer/try"
)

const maxAttempts = 3

func main() {
	url := flag.String("url", "", "source of the election export zip, http(s) or file://")
	outDir := flag.String("outDir", "", "directory to place the expanded export files")
	flag.Parse()
	if *url == "" {
		log.Fatal("inform the source URL")
	}
	if *outDir == "" {
		log.Fatal("inform the output directory")
	}
	if err := collect(*url, *outDir); err != nil {
		log.Fatalf("failed to run collection, error %q", err)
	}
}

func collect(source, outDir string) error {
	var body []byte
	err := try.Do(func(attempt int) (bool, error) {
		var err error
		body, err = downloadFile(source)
		return attempt < maxAttempts, err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch file with URL %s, error %q", source, err)
	}
	paths, err := unzipDownloadedFiles(body, outDir)
	if err != nil {
		return fmt.Errorf("failed to expand downloaded files, error %q", err)
	}
	log.Printf("expanded [ %d ] files into [ %s ]\n", len(paths), outDir)
	return nil
}

// downloadFile fetches the export zip. URLs with the file scheme are
// read through a file transport so local exports go through the same
// path as remote ones.
func downloadFile(url string) ([]byte, error) {
	var res *http.Response
	var err error
	t := &http.Transport{}
	c := &http.Client{Transport: t}
	buf := new(bytes.Buffer)
	switch {
	case strings.HasPrefix(url, "http"):
		res, err = c.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to request files from url %s, error %q", url, err)
		}
		defer res.Body.Close()
		length, err := strconv.Atoi(res.Header.Get("content-length"))
		if err != nil {
			return nil, fmt.Errorf("failed to get the size of the file to download, error %q", err)
		}
		reader := io.LimitReader(res.Body, int64(length))
		bar := pb.Full.Start64(int64(length))
		barReader := bar.NewProxyReader(reader)
		if _, err := io.Copy(buf, barReader); err != nil {
			return nil, fmt.Errorf("failed to copy bytes from the bar reader, error %q", err)
		}
		bar.Finish()
	case strings.HasPrefix(url, "file"):
		t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		res, err = c.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to read files from path %s, error %q", url, err)
		}
		defer res.Body.Close()
		if _, err := io.Copy(buf, res.Body); err != nil {
			return nil, fmt.Errorf("failed to copy the request bytes, error %q", err)
		}
	default:
		return nil, fmt.Errorf("unsupported protocol on URL %s", url)
	}
	return buf.Bytes(), nil
}

// It expands the downloaded .zip into the destination directory and
// returns the paths of the expanded .tsv files.
func unzipDownloadedFiles(buf []byte, unzipDestination string) ([]string, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, err
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = " expanding export files"
	s.Start()
	defer s.Stop()
	var paths []string
	for _, f := range zipReader.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s, error %q", f.Name, err)
		}
		path := filepath.Join(unzipDestination, f.Name)
		if strings.HasSuffix(path, ".tsv") {
			paths = append(paths, path)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, f.Mode()); err != nil {
				return nil, fmt.Errorf("failed to create directory with name %s, error %q", path, err)
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory with name %s, error %q", filepath.Dir(path), err)
			}
			out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
			if err != nil {
				return nil, fmt.Errorf("failed to open file %s, error %q", path, err)
			}
			if _, err = io.Copy(out, rc); err != nil {
				return nil, fmt.Errorf("failed to copy content to expanded file %s", path)
			}
			if err := out.Close(); err != nil {
				return nil, fmt.Errorf("failed to close created file, error %q", err)
			}
		}
		if err := rc.Close(); err != nil {
			return nil, fmt.Errorf("failed to close reader of file inside the zip, error %q", err)
		}
	}
	return paths, nil
}
