// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"

	"dining-concierge/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewElasticsearch creates a client for the restaurant search index.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{
		Addresses: addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	if cfg.OpenSearch {
		esCfg.Transport = &productHeaderTransport{next: http.DefaultTransport}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return es, nil
}

// productHeaderTransport stamps responses with the Elasticsearch product
// header so the v8 client accepts an OpenSearch cluster.
type productHeaderTransport struct {
	next http.RoundTripper
}

func (t *productHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.Header.Get("X-Elastic-Product") == "" {
		res.Header.Set("X-Elastic-Product", "Elasticsearch")
	}
	return res, nil
}

// PingElasticsearch tests the search cluster connection.
func PingElasticsearch(ctx context.Context, es *elasticsearch.Client) error {
	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}
