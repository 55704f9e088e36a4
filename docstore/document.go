// Package docstore is the document service behind the site state store: a
// schema-less store of JSON documents grouped into collections, with
// collection-level and single-document watch subscriptions. Every push
// carries a wholesale snapshot; watchers never receive partial diffs.
// File: docstore/document.go
package docstore

import (
	"context"
	"encoding/json"
)

// Document is one record in a collection. Fields is the raw decoded JSON
// object; ID is the store-assigned identifier.
type Document struct {
	ID     string
	Fields map[string]any
}

// DataTo decodes the document into a typed record. The document id is
// injected under the "id" key so records come out tagged with their remote
// identifier.
func (d Document) DataTo(v any) error {
	merged := make(map[string]any, len(d.Fields)+1)
	for k, val := range d.Fields {
		merged[k] = val
	}
	if d.ID != "" {
		merged["id"] = d.ID
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Snapshot is one push on a subscription channel. Collection watches fill
// Docs; document watches fill Doc and Exists.
type Snapshot struct {
	Docs   []Document
	Doc    Document
	Exists bool
}

// serverTimestampSentinel marks a field to be replaced with the store's
// clock at write time.
type serverTimestampSentinel struct{}

// ServerTimestamp is the sentinel value callers place in a field map to
// request a store-assigned timestamp.
var ServerTimestamp = serverTimestampSentinel{}

// ------------------- write authorization -------------------

// Op classifies a mutating call for the authorizer.
type Op int

const (
	OpWrite Op = iota
	OpDelete
)

// Authorizer decides whether the acting role may perform op on a collection.
// A nil return allows the write; any error rejects it. This is the analog of
// the remote service's security rules: permission failures originate here.
type Authorizer func(role string, op Op, collection string) error

type actorKey struct{}

// WithActor records the acting role on the context for authorization checks.
func WithActor(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, actorKey{}, role)
}

// ActorRole returns the acting role recorded on the context, or "".
func ActorRole(ctx context.Context) string {
	role, _ := ctx.Value(actorKey{}).(string)
	return role
}

// ------------------- service interface -------------------

// Service is the surface the site state store depends on. The sqlite Store
// is the production implementation; tests may substitute their own.
type Service interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	WatchCollection(collection string) *Subscription
	WatchDocument(collection, id string) *Subscription
}
