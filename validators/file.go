package validators

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameMissing     = errors.New("file has no name")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

// VideoFileValidator rejects uploads before a single byte is stored:
// extension allow-list and size cap first, then a content sniff so a
// renamed payload can't pass as video. Returns the HTTP status the
// rejection should be reported with.
func VideoFileValidator(fh *multipart.FileHeader) (int, error) {
	if fh == nil {
		return http.StatusBadRequest, ErrNoFile
	}

	if fh.Filename == "" {
		return http.StatusBadRequest, ErrFileNameMissing
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, ErrFileNameTooLong
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fh.Filename)), ".")
	allowed := viper.GetStringSlice("upload.allowed_extensions")

	if !slices.Contains(allowed, ext) {
		return http.StatusBadRequest, fmt.Errorf("%w: extension %q not allowed, expected one of %s",
			ErrFileTypeUnsupported, ext, strings.Join(allowed, ", "))
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, ErrFileTooLarge
	}

	// Headers and names are easy to spoof, so sniff the actual bytes
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, err
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	if !strings.HasPrefix(mime.String(), "video/") && !strings.HasPrefix(mime.String(), "application/ogg") {
		return http.StatusBadRequest, fmt.Errorf("%w: detected %s", ErrFileTypeUnsupported, mime.String())
	}

	return 0, nil
}
