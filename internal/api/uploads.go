package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/queue"
	"github.com/tripdeskhq/tripdesk/internal/upload"
)

const pdfMimeType = "application/pdf"

// handleUpload accepts one multipart file under the "file" field, stores it,
// records metadata and answers with a descriptor the form can bind straight
// into an upload value. A missing file and a failed store are distinct
// errors so the form can block submission on the latter.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize+1024)
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "not_multipart", "expecting multipart form")
		return
	}
	part, err := nextFilePart(mr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_file", "no file part in request")
		return
	}
	defer part.Close()
	tmp, err := s.persistTemp(part)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_file", err.Error())
		return
	}
	defer os.Remove(tmp.path)
	defer tmp.f.Close()
	if !s.cfg.Allowed(tmp.contentType) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported_type", fmt.Sprintf("%s uploads not allowed", tmp.contentType))
		return
	}

	assetID := uuid.NewString()
	objectKey := fmt.Sprintf("assets/%s/%s", assetID, filepath.Base(tmp.filename))
	if _, err := tmp.f.Seek(0, 0); err != nil {
		respondError(w, http.StatusInternalServerError, "upload_failed", "could not read stored file")
		return
	}
	if err := s.objects.Put(ctx, objectKey, tmp.f, tmp.size, tmp.contentType); err != nil {
		s.log.WithError(err).Error("store upload")
		respondError(w, http.StatusInternalServerError, "upload_failed", "could not store file")
		return
	}
	asset := &model.Asset{
		ID:        assetID,
		ObjectKey: objectKey,
		FileName:  tmp.filename,
		MimeType:  tmp.contentType,
		Size:      tmp.size,
	}
	if err := s.assets.Insert(ctx, asset); err != nil {
		s.log.WithError(err).Error("store asset metadata")
		respondError(w, http.StatusInternalServerError, "upload_failed", "could not store metadata")
		return
	}
	if strings.EqualFold(tmp.contentType, pdfMimeType) {
		if err := s.queue.EnqueueScan(ctx, queue.ScanPayload{AssetID: assetID, ObjectKey: objectKey}); err != nil {
			// Scanning is enrichment; the upload itself already succeeded.
			s.log.WithError(err).Warn("enqueue asset scan")
		}
	}
	url, err := s.objects.PresignGet(ctx, objectKey, s.cfg.SignedURLTTL)
	if err != nil {
		s.log.WithError(err).Error("presign upload")
		respondError(w, http.StatusInternalServerError, "upload_failed", "could not sign asset url")
		return
	}
	respondJSON(w, http.StatusCreated, upload.Descriptor{
		URL:      url,
		FileName: tmp.filename,
		MimeType: tmp.contentType,
	})
}

type tempUpload struct {
	f           *os.File
	path        string
	size        int64
	contentType string
	filename    string
}

func (s *Server) persistTemp(part *multipart.Part) (*tempUpload, error) {
	tmpFile, err := os.CreateTemp("", "tripdesk-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	discard := func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}
	var sniff []byte
	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, readErr := part.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > s.cfg.MaxUploadSize {
				discard()
				return nil, fmt.Errorf("file exceeds limit (%d bytes)", s.cfg.MaxUploadSize)
			}
			if len(sniff) < 512 {
				chunk := n
				if remain := 512 - len(sniff); chunk > remain {
					chunk = remain
				}
				sniff = append(sniff, buf[:chunk]...)
			}
			if _, err := tmpFile.Write(buf[:n]); err != nil {
				discard()
				return nil, fmt.Errorf("write temp file: %w", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			discard()
			return nil, fmt.Errorf("read file: %w", readErr)
		}
	}
	if written == 0 {
		discard()
		return nil, errors.New("empty file")
	}
	contentType := http.DetectContentType(sniff)
	// DetectContentType appends parameters for text types; strip them so the
	// allow-list compares cleanly.
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if _, err := tmpFile.Seek(0, 0); err != nil {
		discard()
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	filename := part.FileName()
	if filename == "" {
		filename = "upload"
	}
	return &tempUpload{
		f:           tmpFile,
		path:        tmpFile.Name(),
		size:        written,
		contentType: contentType,
		filename:    filename,
	}, nil
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}
