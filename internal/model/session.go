package model

import "fmt"

// Local storage keys shared with the front end.
const (
	KeyIsLoggedIn  = "isLoggedIn"
	KeyUserEmail   = "userEmail"
	KeyUserReviews = "userReviews"
)

type ClientID = string

// Session is either logged out (zero value) or logged in with a non-empty identity.
type Session struct {
	LoggedIn bool   `json:"logged_in"`
	Identity string `json:"identity,omitempty"`
}

func LoggedOut() Session {
	return Session{}
}

func LoggedIn(identity string) Session {
	return Session{LoggedIn: true, Identity: identity}
}

// RemoteRejection is a non-2xx answer of the authentication service.
// Detail is shown to the user verbatim.
type RemoteRejection struct {
	Status int
	Detail string
}

func (r *RemoteRejection) Error() string {
	return fmt.Sprintf("rejected with status %d: %s", r.Status, r.Detail)
}
