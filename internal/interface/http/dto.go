package handlers

import (
	"time"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/internal/domain/entity"
)

// Request bodies. Create fields are pointers so that presence is required
// while empty strings stay legal.

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type geoRequest struct {
	Lat *string `json:"lat" binding:"required"`
	Lng *string `json:"lng" binding:"required"`
}

type addressRequest struct {
	Street  *string     `json:"street" binding:"required"`
	Suite   *string     `json:"suite" binding:"required"`
	City    *string     `json:"city" binding:"required"`
	Zipcode *string     `json:"zipcode" binding:"required"`
	Geo     *geoRequest `json:"geo" binding:"required"`
}

type companyRequest struct {
	Name        *string `json:"name" binding:"required"`
	CatchPhrase *string `json:"catchPhrase" binding:"required"`
	BS          *string `json:"bs" binding:"required"`
}

type createUserRequest struct {
	Name     *string         `json:"name" binding:"required"`
	Username *string         `json:"username" binding:"required"`
	Email    *string         `json:"email" binding:"required,email"`
	Phone    *string         `json:"phone" binding:"required"`
	Website  *string         `json:"website" binding:"required"`
	Address  *addressRequest `json:"address" binding:"required"`
	Company  *companyRequest `json:"company" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitnil,email"`
	Phone    *string `json:"phone"`
	Website  *string `json:"website"`
}

type listQuery struct {
	Skip  int `form:"skip,default=0" binding:"gte=0"`
	Limit int `form:"limit,default=100" binding:"gte=1,lte=100"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=200"`
	Size int    `form:"size,default=10" binding:"gte=1,lte=50"`
}

// Response bodies.

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type geoResponse struct {
	ID  int64  `json:"id"`
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type addressResponse struct {
	ID      int64       `json:"id"`
	Street  string      `json:"street"`
	Suite   string      `json:"suite"`
	City    string      `json:"city"`
	Zipcode string      `json:"zipcode"`
	Geo     geoResponse `json:"geo"`
}

type companyResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

type userResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Website  string          `json:"website"`
	Address  addressResponse `json:"address"`
	Company  companyResponse `json:"company"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *createUserRequest) toEntity() *entity.User {
	u := &entity.User{
		Name:     deref(r.Name),
		Username: deref(r.Username),
		Email:    deref(r.Email),
		Phone:    deref(r.Phone),
		Website:  deref(r.Website),
	}
	if a := r.Address; a != nil {
		u.Address = entity.Address{
			Street:  deref(a.Street),
			Suite:   deref(a.Suite),
			City:    deref(a.City),
			Zipcode: deref(a.Zipcode),
		}
		if a.Geo != nil {
			u.Address.Geo = entity.Geo{Lat: deref(a.Geo.Lat), Lng: deref(a.Geo.Lng)}
		}
	}
	if c := r.Company; c != nil {
		u.Company = entity.Company{
			Name:        deref(c.Name),
			CatchPhrase: deref(c.CatchPhrase),
			BS:          deref(c.BS),
		}
	}
	return u
}

func (r *updateUserRequest) toPatch() entity.UserPatch {
	return entity.UserPatch{
		Name:     r.Name,
		Username: r.Username,
		Email:    r.Email,
		Phone:    r.Phone,
		Website:  r.Website,
	}
}

func toTokenResponse(t application.Token) tokenResponse {
	return tokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt}
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Website:  u.Website,
		Address: addressResponse{
			ID:      u.Address.ID,
			Street:  u.Address.Street,
			Suite:   u.Address.Suite,
			City:    u.Address.City,
			Zipcode: u.Address.Zipcode,
			Geo: geoResponse{
				ID:  u.Address.Geo.ID,
				Lat: u.Address.Geo.Lat,
				Lng: u.Address.Geo.Lng,
			},
		},
		Company: companyResponse{
			ID:          u.Company.ID,
			Name:        u.Company.Name,
			CatchPhrase: u.Company.CatchPhrase,
			BS:          u.Company.BS,
		},
	}
}

func toUserResponses(users []entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}
