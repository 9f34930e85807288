package entity

// User is the aggregate root for the user domain.
// Address (with its Geo) and Company are owned 1:1 and are created and
// deleted together with the user.
type User struct {
	ID       int64
	Name     string
	Username string
	Email    string
	Phone    string
	Website  string
	Address  Address
	Company  Company
}

type Address struct {
	ID      int64
	UserID  int64
	Street  string
	Suite   string
	City    string
	Zipcode string
	Geo     Geo
}

type Geo struct {
	ID        int64
	AddressID int64
	Lat       string
	Lng       string
}

type Company struct {
	ID          int64
	UserID      int64
	Name        string
	CatchPhrase string
	BS          string
}

// UserPatch carries a partial update of the user row.
// A nil field is left unchanged.
type UserPatch struct {
	Name     *string
	Username *string
	Email    *string
	Phone    *string
	Website  *string
}

// Empty reports whether the patch sets no field.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Phone == nil && p.Website == nil
}
