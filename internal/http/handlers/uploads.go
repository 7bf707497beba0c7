package handlers

import (
	"bytes"
	"io"
	"net/http"

	"productshots/internal/storage"
)

// MaxUploadBytes caps a single product or logo upload.
const MaxUploadBytes = 10 << 20

type uploadResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	MIME  string `json:"mime"`
	Bytes int    `json:"bytes"`
}

// Upload stores a multipart "file" image under the caller's upload prefix and
// returns the key to reference from a session request.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field required")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	if n == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty upload")
		return
	}
	if n > MaxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds 10MB")
		return
	}
	data := buf.Bytes()
	mime := http.DetectContentType(data)
	if storage.ExtensionForMIME(mime) == "" {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media", "only png, jpeg and webp images are accepted")
		return
	}

	key, err := a.Store.Write(r.Context(), storage.UploadKey(userID, a.NewID(), mime), data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, uploadResponse{Key: key, URL: a.Store.URL(key), MIME: mime, Bytes: len(data)})
}
