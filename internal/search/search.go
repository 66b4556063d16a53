package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/rlammers/microblog-api/internal/models"
)

const postIndex = "posts"

// PostIndex mirrors posts into elasticsearch. A nil PostIndex is a no-op
// so the API runs without a cluster in development and tests.
type PostIndex struct {
	ES     *elasticsearch.Client
	Logger *slog.Logger
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
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
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func NewPostIndex(es *elasticsearch.Client, l *slog.Logger) *PostIndex {
	if es == nil {
		return nil
	}
	return &PostIndex{ES: es, Logger: l}
}

// Index mirrors one post. Indexing failures are logged, not surfaced; the
// relational store stays the source of truth.
func (p *PostIndex) Index(ctx context.Context, post *models.Post) {
	if p == nil {
		return
	}
	doc, err := json.Marshal(post)
	if err != nil {
		p.Logger.Error("post index marshal failed", "post_id", post.ID, "error", err)
		return
	}
	res, err := p.ES.Index(postIndex, bytes.NewReader(doc),
		p.ES.Index.WithContext(ctx),
		p.ES.Index.WithDocumentID(strconv.FormatUint(uint64(post.ID), 10)),
	)
	if err != nil {
		p.Logger.Warn("post index failed", "post_id", post.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		p.Logger.Warn("post index failed", "post_id", post.ID, "status", res.Status())
	}
}

func (p *PostIndex) Delete(ctx context.Context, postID uint) {
	if p == nil {
		return
	}
	res, err := p.ES.Delete(postIndex, strconv.FormatUint(uint64(postID), 10),
		p.ES.Delete.WithContext(ctx))
	if err != nil {
		p.Logger.Warn("post delete from index failed", "post_id", postID, "error", err)
		return
	}
	res.Body.Close()
}

// Search runs a fuzzy multi_match over post bodies.
func (p *PostIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Post, error) {
	if p == nil {
		return 0, nil, fmt.Errorf("search is not configured")
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"body"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := p.ES.Search(
		p.ES.Search.WithContext(ctx),
		p.ES.Search.WithIndex(postIndex),
		p.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
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
				Source models.Post `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	posts := make([]models.Post, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		posts[i] = hit.Source
	}
	return r.Hits.Total.Value, posts, nil
}
