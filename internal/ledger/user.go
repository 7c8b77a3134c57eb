package ledger

import (
	"fmt"
	"sort"
)

// User is a bank customer. The accounts map is an index shared with the
// bank's own registry; neither owns the accounts exclusively.
type User struct {
	id        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	accounts  map[int64]*Account
}

func (u *User) ID() int64 {
	return u.id
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) String() string {
	return fmt.Sprintf("User #%d: %s", u.id, u.FullName())
}

// Account looks up one of the user's accounts.
func (u *User) Account(id int64) (*Account, bool) {
	acc, ok := u.accounts[id]
	return acc, ok
}

// Accounts returns the user's accounts ordered by ID.
func (u *User) Accounts() []*Account {
	out := make([]*Account, 0, len(u.accounts))
	for _, acc := range u.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (u *User) addAccount(acc *Account) {
	u.accounts[acc.id] = acc
}
