package identity

// User is an administrative principal. PasswordHash holds a bcrypt digest;
// the plaintext credential never leaves the login/registration path.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
