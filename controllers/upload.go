package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/storage"
)

const (
	imagesField = "images"
	avatarField = "image"
)

var errNotImage = errors.New("file is not an image")

// imageReader turns multipart parts into storage files. Each part must be at
// most maxSize bytes and sniff as image/*.
type imageReader struct {
	maxSize int64
}

// files returns the parts under field; a request that is not multipart or has
// no such field yields no files.
func (r imageReader) files(c *gin.Context, field string) ([]storage.File, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	headers := form.File[field]
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, err := r.read(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// file returns exactly one part under field.
func (r imageReader) file(c *gin.Context, field string) (storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return storage.File{}, fmt.Errorf("missing file %q", field)
	}
	return r.read(fh)
}

func (r imageReader) read(fh *multipart.FileHeader) (storage.File, error) {
	if fh.Size > r.maxSize {
		return storage.File{}, fmt.Errorf("%s: file size must not exceed %d bytes", fh.Filename, r.maxSize)
	}
	src, err := fh.Open()
	if err != nil {
		return storage.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, r.maxSize+1))
	if err != nil {
		return storage.File{}, err
	}
	if int64(len(data)) > r.maxSize {
		return storage.File{}, fmt.Errorf("%s: file size must not exceed %d bytes", fh.Filename, r.maxSize)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return storage.File{}, fmt.Errorf("%s: %w", fh.Filename, errNotImage)
	}
	return storage.File{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}
