package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Resource is the CRUD surface shared by tasks, agents and conversations.
type Resource[T any] struct {
	c    *Client
	path string
	name string
}

func NewResource[T any](c *Client, path string) Resource[T] {
	name := path[strings.LastIndex(path, "/")+1:]
	return Resource[T]{c: c, path: path, name: name}
}

func (r Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.call(ctx, r.name+".list", http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.c.call(ctx, r.name+".get", http.MethodGet, r.path+"/{id}", pathID(id), &out)
	return out, err
}

// Create posts payload, or an empty body when payload is nil.
func (r Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	var build func(*resty.Request)
	if payload != nil {
		build = jsonBody(payload)
	}
	err := r.c.call(ctx, r.name+".create", http.MethodPost, r.path, build, &out)
	return out, err
}

// Update sends a full or partial body; the backend only changes the fields
// present.
func (r Resource[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var out T
	err := r.c.call(ctx, r.name+".update", http.MethodPut, r.path+"/{id}", func(req *resty.Request) {
		pathID(id)(req)
		jsonBody(patch)(req)
	}, &out)
	return out, err
}

func (r Resource[T]) Remove(ctx context.Context, id string) error {
	return r.c.call(ctx, r.name+".remove", http.MethodDelete, r.path+"/{id}", pathID(id), nil)
}

func pathID(id string) func(*resty.Request) {
	return func(req *resty.Request) { req.SetPathParam("id", id) }
}
