package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/pkg/config"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

// HTTPClassRepository talks to the external class document API. The remote
// store offers single-document reads and writes only; versioned replaces ride
// on ETag/If-Match, with 412 signalling a stale write.
type HTTPClassRepository struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewHTTPClassRepository constructs a document API client.
func NewHTTPClassRepository(cfg config.StoreConfig) *HTTPClassRepository {
	timeout := cfg.DocTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassRepository{
		baseURL:   cfg.DocBaseURL,
		authToken: cfg.DocAuthToken,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *HTTPClassRepository) Get(ctx context.Context, id string) (*models.ClassRecord, error) {
	req, err := r.newRequest(ctx, http.MethodGet, "/classes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore get class %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, appErrors.ErrNotFound
	default:
		return nil, fmt.Errorf("docstore get class %s: unexpected status %d", id, resp.StatusCode)
	}

	var record models.ClassRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("docstore decode class %s: %w", id, err)
	}
	if version, err := parseETag(resp.Header.Get("ETag")); err == nil {
		record.Version = version
	}
	return &record, nil
}

func (r *HTTPClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error) {
	query := url.Values{}
	if filter.OwnerID != "" {
		query.Set("ownerId", filter.OwnerID)
	}
	if filter.Active != nil {
		query.Set("active", strconv.FormatBool(*filter.Active))
	}

	path := "/classes"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := r.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore list classes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docstore list classes: unexpected status %d", resp.StatusCode)
	}

	var records []models.ClassRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("docstore decode class list: %w", err)
	}
	return records, nil
}

func (r *HTTPClassRepository) Create(ctx context.Context, record *models.ClassRecord) error {
	record.Version = 1
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("docstore encode class %s: %w", record.ID, err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, "/classes", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("docstore create class %s: %w", record.ID, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("docstore create class %s: unexpected status %d", record.ID, resp.StatusCode)
	}
	return nil
}

func (r *HTTPClassRepository) Replace(ctx context.Context, record *models.ClassRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("docstore encode class %s: %w", record.ID, err)
	}

	req, err := r.newRequest(ctx, http.MethodPut, "/classes/"+url.PathEscape(record.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", formatETag(record.Version))

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("docstore replace class %s: %w", record.ID, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		record.Version++
		return nil
	case http.StatusNotFound:
		return appErrors.ErrNotFound
	case http.StatusPreconditionFailed:
		return appErrors.ErrVersionConflict
	default:
		return fmt.Errorf("docstore replace class %s: unexpected status %d", record.ID, resp.StatusCode)
	}
}

func (r *HTTPClassRepository) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("docstore build request: %w", err)
	}
	if r.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func formatETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

func parseETag(raw string) (int64, error) {
	trimmed := raw
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	return strconv.ParseInt(trimmed, 10, 64)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
