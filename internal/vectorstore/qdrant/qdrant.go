package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"triage/internal/domain"
)

// Index is a minimal REST client to one Qdrant collection. The collection
// is created lazily with cosine distance on first use; creation is
// idempotent so concurrent first requests are safe.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client

	mu      sync.Mutex
	ensured bool
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func NewIndex(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Upsert writes entries in a single call; ids are stable, so re-upserting
// an id overwrites the previous vector and payload.
func (s *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(entries[0].Vector)); err != nil {
		return err
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload := make(map[string]any, len(e.Payload)+1)
		for k, v := range e.Payload {
			payload[k] = v
		}
		payload["id"] = e.ID
		points[i] = map[string]any{
			"id":      pointID(e.ID),
			"vector":  e.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil)
}

// Query runs a nearest-neighbor search and returns hits with payloads,
// ordered by descending cosine similarity.
func (s *Index) Query(ctx context.Context, vector []float64, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		topK = 5
	}
	if err := s.ensureCollection(ctx, len(vector)); err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredEntry, 0, len(resp.Result))
	for _, r := range resp.Result {
		id, _ := r.Payload["id"].(string)
		results = append(results, domain.ScoredEntry{ID: id, Payload: r.Payload, Score: r.Score})
	}
	return results, nil
}

// Delete removes the given ids. Qdrant treats unknown points as deleted, so
// this is a no-op for ids that were never upserted.
func (s *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	body := map[string]any{"points": points}
	return s.deletePoints(ctx, body)
}

// DeleteByParent removes every point whose payload parent_id matches.
func (s *Index) DeleteByParent(ctx context.Context, parentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "parent_id", "match": map[string]any{"value": parentID}},
			},
		},
	}
	return s.deletePoints(ctx, body)
}

// deletePoints tolerates a missing collection: deleting from an index that
// was never written to counts as success, matching the no-op contract for
// unknown ids.
func (s *Index) deletePoints(ctx context.Context, body map[string]any) error {
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection)
	status, err := s.doJSONStatus(ctx, http.MethodPost, url, body, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

func (s *Index) ensureCollection(ctx context.Context, fallbackDim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	dim := s.dimension
	if dim <= 0 {
		dim = fallbackDim
	}
	if dim <= 0 {
		return errors.New("invalid dimension")
	}
	// Probe first: recreating an existing collection with PUT would race
	// against concurrent writers.
	status, err := s.get(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection))
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dim,
				"distance": "Cosine",
			},
		}
		if err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
			return err
		}
	}
	s.ensured = true
	return nil
}

// pointID maps a stable string id onto the UUID space Qdrant accepts.
// The mapping is deterministic, so the same logical id always addresses
// the same point.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func (s *Index) get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func (s *Index) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Index) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Index) doJSON(ctx context.Context, method, url string, body, out any) error {
	_, err := s.doJSONStatus(ctx, method, url, body, out)
	return err
}

func (s *Index) doJSONStatus(ctx context.Context, method, url string, body, out any) (int, error) {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}

func (s *Index) setHeaders(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
