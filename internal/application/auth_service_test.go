package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/pkg/helpers"
)

func newAuthService(t *testing.T) (*application.AuthService, *fakePublisher) {
	t.Helper()
	store := openStore(t)
	pub := &fakePublisher{}
	return application.NewAuthService(store.AuthUsers(), newJWT(), pub, helpers.NewDiscardLogger()), pub
}

func TestRegister_IssuesTokenForEmail(t *testing.T) {
	svc, pub := newAuthService(t)
	ctx := context.Background()

	before := time.Now()
	tok, err := svc.Register(ctx, "Alice", "a@x.io", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if tok.TokenType != "bearer" {
		t.Errorf("TokenType = %q", tok.TokenType)
	}
	if d := tok.ExpiresAt.Sub(before); d < 29*time.Minute || d > 31*time.Minute {
		t.Errorf("expiry %v after issue, want ~30m", d)
	}
	id, err := svc.Authenticate(tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.Email != "a@x.io" {
		t.Errorf("Email = %q", id.Email)
	}
	if got := pub.types(); len(got) != 1 || got[0] != application.EventAuthRegistered {
		t.Errorf("events = %v", got)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "Alice", "a@x.io", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "Other", "a@x.io", "other")
	if !errors.Is(err, application.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "Alice", "race@x.io", "secret1")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, application.ErrEmailTaken):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("successes = %d, want 1", ok)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "Alice", "a@x.io", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tok, err := svc.Login(ctx, "a@x.io", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id, err := svc.Authenticate(tok.AccessToken); err != nil || id.Email != "a@x.io" {
		t.Errorf("Authenticate = %v, %v", id, err)
	}

	_, wrongPass := svc.Login(ctx, "a@x.io", "nope")
	_, unknown := svc.Login(ctx, "b@x.io", "secret1")
	if !errors.Is(wrongPass, application.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", wrongPass)
	}
	if wrongPass != unknown {
		t.Errorf("wrong password and unknown email must be indistinguishable: %v vs %v", wrongPass, unknown)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc, _ := newAuthService(t)

	expired := newJWT()
	expired.Now = func() time.Time { return time.Now().Add(-31 * time.Minute) }
	old, _, err := expired.GenerateAccessToken("a@x.io")
	if err != nil {
		t.Fatal(err)
	}
	forged, _, err := helpers.NewJWTManager("other-secret", time.Minute).GenerateAccessToken("a@x.io")
	if err != nil {
		t.Fatal(err)
	}

	for name, tok := range map[string]string{
		"empty":   "",
		"garbage": "not.a.jwt",
		"expired": old,
		"forged":  forged,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Authenticate(tok); !errors.Is(err, application.ErrUnauthorized) {
				t.Errorf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestEnsureUser(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, "Admin User", "admin@example.com", "admin123")
	if err != nil || !created {
		t.Fatalf("first EnsureUser = %v, %v", created, err)
	}
	created, err = svc.EnsureUser(ctx, "Admin User", "admin@example.com", "admin123")
	if err != nil || created {
		t.Fatalf("second EnsureUser = %v, %v", created, err)
	}
	if _, err := svc.Login(ctx, "admin@example.com", "admin123"); err != nil {
		t.Errorf("Login: %v", err)
	}
}
