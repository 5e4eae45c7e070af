package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string
}

type Client struct {
	es *elasticsearch.Client
}

func NewClient(cfg *Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	return &Client{es: es}, nil
}

// CreateIndex creates index with the given mapping unless it already exists.
func (c *Client) CreateIndex(ctx context.Context, index, mapping string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}

// IndexVersioned writes doc only if version is newer than the stored one. A stale write is
// dropped without error, so concurrent writers converge on the latest version.
func (c *Client) IndexVersioned(ctx context.Context, index, id string, version int64, doc interface{}) error {
	v := int(version)
	err := c.index(ctx, esapi.IndexRequest{
		Index:       index,
		DocumentID:  id,
		Version:     &v,
		VersionType: "external",
	}, doc)
	if errors.Is(err, errVersionConflict) {
		return nil
	}
	return err
}

var errVersionConflict = errors.New("version conflict")

func (c *Client) index(ctx context.Context, req esapi.IndexRequest, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req.Body = bytes.NewReader(body)
	req.Refresh = "false"

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return fmt.Errorf("index document %s/%s: %w", req.Index, req.DocumentID, errVersionConflict)
	}
	if res.IsError() {
		return fmt.Errorf("index document %s/%s: %s", req.Index, req.DocumentID, res.Status())
	}
	return nil
}
