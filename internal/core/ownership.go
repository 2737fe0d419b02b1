package core

// Owned is implemented by every record that belongs to a single user.
type Owned interface {
	OwnerID() int64
}

func (c Category) OwnerID() int64    { return c.UserID }
func (t Transaction) OwnerID() int64 { return t.UserID }
func (b Budget) OwnerID() int64      { return b.UserID }

// Owns is the one ownership rule: a resolved user owns a record when the
// record's owner id equals the user's id.
func (u User) Owns(r Owned) bool {
	return u.ID != 0 && u.ID == r.OwnerID()
}
