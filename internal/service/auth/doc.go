// Package auth issues and verifies JWT access tokens and hashes passwords.
package auth
