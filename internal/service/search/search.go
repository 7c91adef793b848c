// Package search runs product queries against Elasticsearch. The
// whole package is optional: a nil Service (no cluster configured)
// reports itself disabled and indexing becomes a no-op.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/monashmerchant/shop/internal/models"
)

// ErrDisabled is returned when no Elasticsearch backend is configured.
var ErrDisabled = errors.New("search disabled")

type Service struct {
	ES    *elasticsearch.Client
	Index string
}

func (s *Service) Enabled() bool {
	return s != nil && s.ES != nil
}

// Search runs a fuzzy multi-field query and returns the total hit
// count plus one page of products.
func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if !s.Enabled() {
		return 0, nil, ErrDisabled
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "brand", "category", "subcategory"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode response: %w", err)
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}

// IndexProduct upserts one product document keyed by product id.
func (s *Service) IndexProduct(ctx context.Context, p models.Product) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product %s: %w", p.ID, err)
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithDocumentID(p.ID),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index product %s: %s", p.ID, strings.TrimSpace(string(body)))
	}
	return nil
}

// IndexAll refreshes every product document, used at startup so the
// index catches up with whatever the store reloaded.
func (s *Service) IndexAll(ctx context.Context, products []models.Product) error {
	if !s.Enabled() {
		return nil
	}
	for _, p := range products {
		if err := s.IndexProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
