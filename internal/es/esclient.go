package es

import (
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/monashmerchant/shop/internal/config"
)

// NewClient connects to the configured cluster and verifies it
// answers before anything depends on it.
func NewClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}

	return client, nil
}
