package main

import "net/http"

// rootPath sends every visitor to /home without looking at the session.
// /home does the session check and bounces to /auth when its API call is unauthorized.
func rootPath(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home", http.StatusTemporaryRedirect)
}
