package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(cfg Config) (*elasticsearch.Client, error) {
	slog.Info("connecting to elasticsearch", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error %s: %s", res.Status(), body)
	}

	return client, nil
}

// ESIndexer keeps a searchable copy of orders, one document per orderID.
type ESIndexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (i *ESIndexer) IndexOrder(ctx context.Context, orderID string, order map[string]any) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", orderID, err)
	}

	opts := []func(*esapi.IndexRequest){i.ES.Index.WithContext(ctx)}
	if orderID != "" {
		opts = append(opts, i.ES.Index.WithDocumentID(orderID))
	}

	res, err := i.ES.Index(i.Index, bytes.NewReader(data), opts...)
	if err != nil {
		return fmt.Errorf("index order %s: %w", orderID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index order %s: %s: %s", orderID, res.Status(), body)
	}
	return nil
}

func (i *ESIndexer) SearchOrders(ctx context.Context, query string, from, size int) (int64, []map[string]any, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"orderID^2", "status", "*"},
				"fuzziness": "AUTO",
				"lenient":   true,
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search orders: %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	orders := make([]map[string]any, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		orders[n] = hit.Source
	}
	return r.Hits.Total.Value, orders, nil
}
