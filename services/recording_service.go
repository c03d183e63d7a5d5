package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"mockinterview/models"
)

var (
	ErrRecordingNotFound    = errors.New("recording not found")
	ErrRecordingTooLarge    = errors.New("recording exceeds size limit")
	ErrUnsupportedMediaType = errors.New("unsupported recording media type")
	errInvalidSessionID     = errors.New("invalid session id")
)

var allowedRecordingTypes = map[string]bool{
	"video/webm": true,
	"audio/webm": true,
}

var safeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RecordingService stores one recording per session on local disk.
type RecordingService struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewRecordingService(dir string, maxBytes int64) (*RecordingService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	return &RecordingService{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

func (r *RecordingService) paths(sessionID string) (string, string, error) {
	if !safeID.MatchString(sessionID) {
		return "", "", errInvalidSessionID
	}
	base := filepath.Join(r.dir, sessionID)
	return base + ".webm", base + ".json", nil
}

// Save replaces the session's recording with the contents of src.
func (r *RecordingService) Save(sessionID, contentType string, src io.Reader) (models.Recording, error) {
	if !allowedRecordingTypes[contentType] {
		return models.Recording{}, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}
	dataPath, metaPath, err := r.paths(sessionID)
	if err != nil {
		return models.Recording{}, err
	}

	tmp, err := os.CreateTemp(r.dir, sessionID+"-*.part")
	if err != nil {
		return models.Recording{}, fmt.Errorf("create temp recording: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(src, r.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return models.Recording{}, fmt.Errorf("write recording: %w", err)
	}
	if closeErr != nil {
		return models.Recording{}, fmt.Errorf("close recording: %w", closeErr)
	}
	if n > r.maxBytes {
		return models.Recording{}, ErrRecordingTooLarge
	}

	rec := models.Recording{SessionID: sessionID, ContentType: contentType, Size: n, StoredAt: r.now()}
	meta, err := json.Marshal(rec)
	if err != nil {
		return models.Recording{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return models.Recording{}, fmt.Errorf("store recording: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return models.Recording{}, fmt.Errorf("store recording metadata: %w", err)
	}
	return rec, nil
}

// Open returns the recording metadata and a reader the caller must close.
func (r *RecordingService) Open(sessionID string) (models.Recording, *os.File, error) {
	dataPath, metaPath, err := r.paths(sessionID)
	if err != nil {
		return models.Recording{}, nil, err
	}
	meta, err := os.ReadFile(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return models.Recording{}, nil, ErrRecordingNotFound
	}
	if err != nil {
		return models.Recording{}, nil, err
	}
	var rec models.Recording
	if err := json.Unmarshal(meta, &rec); err != nil {
		return models.Recording{}, nil, fmt.Errorf("decode recording metadata: %w", err)
	}
	f, err := os.Open(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return models.Recording{}, nil, ErrRecordingNotFound
	}
	if err != nil {
		return models.Recording{}, nil, err
	}
	return rec, f, nil
}

func (r *RecordingService) Delete(sessionID string) error {
	dataPath, metaPath, err := r.paths(sessionID)
	if err != nil {
		return err
	}
	err = os.Remove(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrRecordingNotFound
	}
	if err != nil {
		return err
	}
	if err := os.Remove(metaPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
