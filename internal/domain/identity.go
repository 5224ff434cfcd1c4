package domain

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is resolved by the authentication layer in front of this service.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManage reports whether the identity may change the given reservation.
func (i Identity) CanManage(r *Reservation) bool {
	return i.IsAdmin() || (i.Authenticated() && r.UserID == i.UserID)
}
