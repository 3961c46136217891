package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
)

const IndexAuthEvents = "auth_events"

// Event is one audit trail entry as stored in the index.
type Event struct {
	Timestamp time.Time `json:"@timestamp"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
}

// Trail reads and writes the auth_events index. The indexer binary
// writes; the admin audit endpoint reads.
type Trail struct {
	ES *elasticsearch.Client
}

func NewTrail(client *elasticsearch.Client) *Trail {
	return &Trail{ES: client}
}

func (t *Trail) Index(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	res, err := t.ES.Index(
		IndexAuthEvents,
		bytes.NewReader(data),
		t.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("audit: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("audit: index returned %s: %s", res.Status(), body)
	}
	return nil
}

// Search returns events newest first, optionally narrowed to one user.
// userID filters on the keyword subfield: the uuid would otherwise be
// torn apart by the analyzer and never match.
func (t *Trail) Search(ctx context.Context, userID string, from, size int) (int64, []Event, error) {
	var query map[string]interface{}
	if userID != "" {
		query = map[string]interface{}{
			"term": map[string]interface{}{"user_id.keyword": userID},
		}
	} else {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	body := map[string]interface{}{
		"query": query,
		"sort": []map[string]interface{}{
			{"@timestamp": map[string]interface{}{"order": "desc"}},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("audit: encode query: %w", err)
	}

	res, err := t.ES.Search(
		t.ES.Search.WithContext(ctx),
		t.ES.Search.WithIndex(IndexAuthEvents),
		t.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("audit: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("audit: search returned %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Event `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("audit: decode response: %w", err)
	}

	events := make([]Event, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		events[i] = hit.Source
	}
	return r.Hits.Total.Value, events, nil
}
