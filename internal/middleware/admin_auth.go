package middleware

import (
	"context"
	"net/http"
)

type credentialKey struct{}

// adminUser is the only user name accepted with HTTP Basic auth.
const adminUser = "admin"

// wrongUser stands in for the password when Basic auth names another user.
// Environment values cannot hold a NUL byte, so it never equals the admin
// password and the workflow reports a bad credential.
const wrongUser = "\x00wrong-user"

// AdminCredential extracts the admin password a request carries, from the
// "password" form field or from HTTP Basic auth, and stores it in the request
// context. It never rejects a request: checking the password is the job of
// the workflow, which treats an empty one as "not attempted".
func AdminCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.PostFormValue("password")
		if credential == "" {
			credential = basicAuthPassword(r)
		}
		ctx := context.WithValue(r.Context(), credentialKey{}, credential)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Credential returns the password stored by AdminCredential, or "".
func Credential(ctx context.Context) string {
	v, _ := ctx.Value(credentialKey{}).(string)
	return v
}

func basicAuthPassword(r *http.Request) string {
	user, password, ok := r.BasicAuth()
	if !ok {
		return ""
	}
	if user != adminUser {
		return wrongUser
	}
	return password
}
