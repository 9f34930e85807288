package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/pkg/helpers"
)

// seedUser is one record of a JSONPlaceholder-format users file.
type seedUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Address  struct {
		Street  string `json:"street"`
		Suite   string `json:"suite"`
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
		Geo     struct {
			Lat string `json:"lat"`
			Lng string `json:"lng"`
		} `json:"geo"`
	} `json:"address"`
	Company struct {
		Name        string `json:"name"`
		CatchPhrase string `json:"catchPhrase"`
		BS          string `json:"bs"`
	} `json:"company"`
}

func (s seedUser) toEntity() *entity.User {
	return &entity.User{
		Name:     s.Name,
		Username: s.Username,
		Email:    s.Email,
		Phone:    s.Phone,
		Website:  s.Website,
		Address: entity.Address{
			Street:  s.Address.Street,
			Suite:   s.Address.Suite,
			City:    s.Address.City,
			Zipcode: s.Address.Zipcode,
			Geo:     entity.Geo{Lat: s.Address.Geo.Lat, Lng: s.Address.Geo.Lng},
		},
		Company: entity.Company{
			Name:        s.Company.Name,
			CatchPhrase: s.Company.CatchPhrase,
			BS:          s.Company.BS,
		},
	}
}

// sampleUsers is used when a local seed file does not exist.
var sampleUsers = []seedUser{
	newSample("Leanne Graham", "Bret", "leanne@example.com", "1-770-736-8031 x56442", "hildegard.org",
		"Kulas Light", "Apt. 556", "Gwenborough", "92998-3874", "-37.3159", "81.1496",
		"Romaguera-Crona", "Multi-layered client-server neural-net", "harness real-time e-markets"),
	newSample("Ervin Howell", "Antonette", "ervin@example.com", "010-692-6593 x09125", "anastasia.net",
		"Victor Plains", "Suite 879", "Wisokyburgh", "90566-7771", "-43.9509", "-34.4618",
		"Deckow-Crist", "Proactive didactic contingency", "synergize scalable supply-chains"),
}

func newSample(name, username, email, phone, website, street, suite, city, zipcode, lat, lng, company, catchPhrase, bs string) seedUser {
	var s seedUser
	s.Name, s.Username, s.Email, s.Phone, s.Website = name, username, email, phone, website
	s.Address.Street, s.Address.Suite, s.Address.City, s.Address.Zipcode = street, suite, city, zipcode
	s.Address.Geo.Lat, s.Address.Geo.Lng = lat, lng
	s.Company.Name, s.Company.CatchPhrase, s.Company.BS = company, catchPhrase, bs
	return s
}

// loadSeed reads users from a local path or a gs://bucket/object URL.
// A missing local file falls back to sampleUsers.
func loadSeed(ctx context.Context, source, gcsCredsPath string) ([]seedUser, error) {
	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(source, "gs://") {
		raw, err = readGCS(ctx, source, gcsCredsPath)
		if err != nil {
			return nil, err
		}
	} else {
		raw, err = os.ReadFile(source)
		if errors.Is(err, fs.ErrNotExist) {
			return sampleUsers, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return decodeSeed(raw)
}

func decodeSeed(raw []byte) ([]seedUser, error) {
	var users []seedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return users, nil
}

func readGCS(ctx context.Context, source, credsPath string) ([]byte, error) {
	bucket, object, err := helpers.ParseGSURL(source)
	if err != nil {
		return nil, err
	}
	client, err := helpers.NewGCSClient(ctx, credsPath)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	defer func() { _ = client.Close() }()
	return helpers.ReadObject(ctx, client, bucket, object)
}

type userCreator interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
}

type authEnsurer interface {
	EnsureUser(ctx context.Context, name, email, password string) (bool, error)
}

type admin struct {
	Name, Email, Password string
}

type seedResult struct {
	Created      int
	Skipped      bool
	AdminCreated bool
}

// seed creates every user when the store holds none, then makes sure the
// admin login exists. Each user is created in its own transaction.
func seed(ctx context.Context, users userCreator, auth authEnsurer, data []seedUser, adm admin) (seedResult, error) {
	var res seedResult
	n, err := users.Count(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		res.Skipped = true
	} else {
		for _, su := range data {
			if _, err := users.Create(ctx, su.toEntity()); err != nil {
				return res, fmt.Errorf("seed user %q: %w", su.Username, err)
			}
			res.Created++
		}
	}
	res.AdminCreated, err = auth.EnsureUser(ctx, adm.Name, adm.Email, adm.Password)
	if err != nil {
		return res, fmt.Errorf("seed admin: %w", err)
	}
	return res, nil
}
