package replication

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

type fakeEndpoint struct {
	name string

	mu        sync.Mutex
	id        string
	doc       json.RawMessage
	createID  string
	createErr error
	putErr    error
	getErr    error
	creates   int
	puts      int
	gets      int
	block     bool
}

func newFake(name string) *fakeEndpoint {
	return &fakeEndpoint{name: name, createID: name + "-uuid"}
}

func (f *fakeEndpoint) Name() string { return f.name }

func (f *fakeEndpoint) CreateIdentity(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeEndpoint) Adopt(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

func (f *fakeEndpoint) Identity() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeEndpoint) Put(ctx context.Context, doc json.RawMessage) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.doc = append(json.RawMessage(nil), doc...)
	return nil
}

func (f *fakeEndpoint) Get(ctx context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc == nil {
		return nil, ErrNotFound
	}
	return f.doc, nil
}

var errUnreachable = errors.New("connection refused")
