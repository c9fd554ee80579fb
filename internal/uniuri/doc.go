// Package uniuri generates cryptographically secure random strings: setup
// tokens and throwaway passwords for invited accounts.
package uniuri
