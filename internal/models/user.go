// Package models defines the canonical records produced by the normalizer.
package models

// User is the canonical user record every source adapter produces.
// Field order matches the serialized output.
type User struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	SourceID  int    `json:"source_id"`
}
