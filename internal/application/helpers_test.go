package application_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/internal/infrastructure/sqlite"
	"github.com/oksasatya/users-api/pkg/helpers"
)

type publishedEvent struct {
	Type string
	Body any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, msgType string, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: msgType, Body: body})
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[int64]string
	deleted []int64
	hits    []int64
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[int64]string{}}
}

func (f *fakeIndex) IndexUser(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[u.ID] = u.Username
	return f.err
}

func (f *fakeIndex) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) SearchIDs(_ context.Context, _ string, size int) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > size {
		return f.hits[:size], nil
	}
	return f.hits, nil
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("test-secret", 30*time.Minute)
}

func sampleUser(username, email string) *entity.User {
	return &entity.User{
		Name:     "Leanne Graham",
		Username: username,
		Email:    email,
		Phone:    "1-770-736-8031 x56442",
		Website:  "hildegard.org",
		Address: entity.Address{
			Street:  "Kulas Light",
			Suite:   "Apt. 556",
			City:    "Gwenborough",
			Zipcode: "92998-3874",
			Geo:     entity.Geo{Lat: "-37.3159", Lng: "81.1496"},
		},
		Company: entity.Company{
			Name:        "Romaguera-Crona",
			CatchPhrase: "Multi-layered client-server neural-net",
			BS:          "harness real-time e-markets",
		},
	}
}

var _ application.EventPublisher = (*fakePublisher)(nil)
var _ application.UserSearcher = (*fakeIndex)(nil)
