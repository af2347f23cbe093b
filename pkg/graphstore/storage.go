// Package graphstore is an optional SurrealDB-backed cache in front of
// internal/callgraph.Analyze (spec.md §1: ancillary tooling is an external
// collaborator of the core). Call graphs over a large program can be
// expensive to recompute on every CLI invocation; this package lets a
// caller store the last analysis per (entry ns, entry def) and only
// recompute when the driver's program has actually changed underneath it.
// Adapted from the teacher's internal/graph.Storage: same
// surrealdb.go connect/sign-in/use sequence and UPSERT-by-id query shape,
// one record kind instead of codeloom's nodes/edges graph schema.
package graphstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/hflisp/calcit/internal/callgraph"
)

// Config mirrors the teacher's StorageConfig field-for-field, renamed off
// "database" to match this repo's GraphStoreConfig naming.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Storage is a thin SurrealDB cache of callgraph.Result records keyed by
// entry ns/def.
type Storage struct {
	db *surrealdb.DB
}

func NewStorage(cfg Config) (*Storage, error) {
	ctx := context.Background()
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("graphstore: failed to connect to surrealdb: %w", err)
	}
	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("graphstore: failed to sign in: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("graphstore: failed to use namespace/database: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close(context.Background())
}

// record is the SurrealDB row shape: the analysis result serialized as
// JSON text, keyed by a stable record id built from entry ns/def.
type record struct {
	ID      string `json:"id"`
	Ns      string `json:"ns"`
	Def     string `json:"def"`
	Payload string `json:"payload"`
}

func recordID(ns, def string) string {
	return fmt.Sprintf("callgraphs:%s__%s", sanitize(ns), sanitize(def))
}

func sanitize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}

// Put stores a call graph analysis result for (ns, def), overwriting any
// prior entry.
func (s *Storage) Put(ctx context.Context, ns, def string, result *callgraph.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("graphstore: marshaling result: %w", err)
	}
	query := `UPSERT callgraphs SET id = $id, ns = $ns, def = $def, payload = $payload WHERE id = $id`
	_, err = surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"id":      recordID(ns, def),
		"ns":      ns,
		"def":     def,
		"payload": string(payload),
	})
	return err
}

// Get returns a previously stored call graph analysis for (ns, def), if
// any.
func (s *Storage) Get(ctx context.Context, ns, def string) (*callgraph.Result, bool, error) {
	row, err := surrealdb.Select[record](ctx, s.db, recordID(ns, def))
	if err != nil {
		return nil, false, nil
	}
	var result callgraph.Result
	if err := json.Unmarshal([]byte(row.Payload), &result); err != nil {
		return nil, false, fmt.Errorf("graphstore: unmarshaling cached result: %w", err)
	}
	return &result, true, nil
}
