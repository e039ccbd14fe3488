package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"
)

// uploadResp is the JSON response returned after a file has been saved.
type uploadResp struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename"`
	SavedTo  string `json:"saved_to"`
}

// uploadHandler handles POST /uploads. The request must carry the issued
// bearer token and a multipart/form-data body with a part named "file".
// The part is written to the upload directory under its basename.
func (cfg Config) uploadHandler() http.Handler {
	return cfg.Auth.requireBearer(cfg.Metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fail := func(e apiError) {
			cfg.Metrics.recordUpload(e.Code, 0)
			writeError(w, e)
		}

		// A malformed parameter still yields the media type; a missing
		// boundary is reported once the body is read.
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
			fail(errInvalidContentType)
			return
		}
		if mediaType != "multipart/form-data" {
			fail(errInvalidContentType)
			return
		}

		file, err := readFilePart(r)
		if err != nil {
			var ae apiError
			if !errors.As(err, &ae) {
				ae = errMissingFileField
			}
			fail(ae)
			return
		}

		name, err := Basename(file.Filename)
		if err != nil {
			fail(errInvalidFile)
			return
		}

		savedTo, err := cfg.Store.Save(name, file.Content)
		if err != nil {
			cfg.Logger.Error("upload save failed",
				zap.String("rid", RequestIDFromContext(r.Context())),
				zap.String("filename", name),
				zap.Error(err),
			)
			fail(errSaveFailed)
			return
		}

		cfg.Metrics.recordUpload("ok", len(file.Content))
		writeJSON(w, http.StatusOK, uploadResp{
			OK:       true,
			Filename: name,
			SavedTo:  savedTo,
		})
	}))
}

// readFilePart walks the multipart body and returns the first part named
// "file". A body that does not parse, or has no such part, is
// errMissingFileField. A file part without a filename or whose content
// cannot be read to the end is errInvalidFile.
func readFilePart(r *http.Request) (UploadedFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return UploadedFile{}, errMissingFileField
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return UploadedFile{}, errMissingFileField
		}
		if err != nil {
			return UploadedFile{}, errMissingFileField
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		defer func() { _ = part.Close() }()

		filename := clientFilename(part.Header.Get("Content-Disposition"))
		if filename == "" {
			return UploadedFile{}, errInvalidFile
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return UploadedFile{}, errInvalidFile
		}
		return UploadedFile{Filename: filename, Content: content}, nil
	}
}

// clientFilename returns the filename parameter of a Content-Disposition
// header exactly as the client sent it. multipart.Part.FileName is not
// used because it already applies filepath.Base, which turns "a/.." into
// "..".
func clientFilename(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
