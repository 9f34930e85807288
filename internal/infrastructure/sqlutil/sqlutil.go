// Package sqlutil holds query helpers shared by the postgres and sqlite
// repositories.
package sqlutil

import (
	"github.com/oksasatya/users-api/internal/domain/entity"
)

// PatchAssignments builds "column = placeholder" pairs for the set fields of
// patch, in a fixed column order. placeholder receives the 1-based argument
// position, so callers can emit "$n" or "?".
func PatchAssignments(patch entity.UserPatch, placeholder func(n int) string) ([]string, []any) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, col+" = "+placeholder(len(args)))
	}
	add("name", patch.Name)
	add("username", patch.Username)
	add("email", patch.Email)
	add("phone", patch.Phone)
	add("website", patch.Website)
	return sets, args
}

// OrderByIDs returns users in the order of ids. Ids without a user are
// skipped, and a repeated id yields its user once.
func OrderByIDs(users []entity.User, ids []int64) []entity.User {
	byID := make(map[int64]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]entity.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
			delete(byID, id)
		}
	}
	return out
}
