// Package search queries the restaurant index by cuisine.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"dining-concierge/internal/common/config"
	"dining-concierge/internal/models"
)

// Index returns restaurant ids for a cuisine alias, in index order.
type Index interface {
	SearchByCuisine(ctx context.Context, alias string, size int) ([]models.RestaurantIndexEntry, error)
}

type ElasticsearchIndex struct {
	client  *elasticsearch.Client
	index   string
	field   string
	timeout time.Duration
}

func NewElasticsearchIndex(client *elasticsearch.Client, cfg config.SearchConfig) *ElasticsearchIndex {
	return &ElasticsearchIndex{
		client:  client,
		index:   cfg.Index,
		field:   cfg.CuisineField,
		timeout: config.GetDuration(cfg.Timeout),
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                      `json:"_id"`
			Source models.RestaurantIndexEntry `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildQuery returns the exact-match term query on the cuisine field.
func BuildQuery(field, alias string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				field: alias,
			},
		},
	}
}

func (i *ElasticsearchIndex) SearchByCuisine(ctx context.Context, alias string, size int) ([]models.RestaurantIndexEntry, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	body, err := json.Marshal(BuildQuery(i.field, alias, size))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s failed: %s", i.index, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	entries := make([]models.RestaurantIndexEntry, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		entry := hit.Source
		if entry.RestaurantID == "" {
			entry.RestaurantID = hit.ID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
