package domain

// User is a registered account as stored in the users table. The password is
// kept in plain text; the store never leaves the local machine and this
// tracker makes no security claims beyond that.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session identifies the currently logged-in user. It is the only part of a
// User record exposed after authentication and never carries the password.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
