package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
)

// TaskIndex mirrors tasks into an Elasticsearch index for full-text search.
// The task store stays the source of truth; the index only yields ids.
type TaskIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{es: es, index: index}
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "progress":    {"type": "keyword"},
      "userId":      {"type": "keyword"},
      "dueDate":     {"type": "date", "format": "yyyy-MM-dd"},
      "createdAt":   {"type": "date"},
      "updatedAt":   {"type": "date"}
    }
  }
}`

type taskDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    string `json:"progress"`
	UserID      string `json:"userId"`
	DueDate     string `json:"dueDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toDocument(t entity.Task) taskDocument {
	d := taskDocument{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Progress:    string(t.Progress),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		d.DueDate = t.DueDate.Format("2006-01-02")
	}
	return d
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(ctx),
		x.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

func (x *TaskIndex) IndexTask(ctx context.Context, t entity.Task) error {
	b, err := json.Marshal(toDocument(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index task %s: %s", t.ID, res.Status())
	}
	return nil
}

// DeleteTask removes the document. A missing document is not an error.
func (x *TaskIndex) DeleteTask(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete task %s: %s", id, res.Status())
	}
	return nil
}

// buildQuery matches title and description and filters on owner and progress.
func buildQuery(q string, ownerIDs []string, progress entity.Progress, size int) map[string]any {
	filter := []any{
		map[string]any{"terms": map[string]any{"userId": ownerIDs}},
	}
	if progress != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"progress": string(progress)}})
	}
	return map[string]any{
		"_source": false,
		"size":    size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": filter,
			},
		},
	}
}

func (x *TaskIndex) SearchTaskIDs(ctx context.Context, q string, ownerIDs []string, progress entity.Progress, size int) ([]string, error) {
	if len(ownerIDs) == 0 {
		return []string{}, nil
	}
	b, err := json.Marshal(buildQuery(q, ownerIDs, progress, size))
	if err != nil {
		return nil, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
