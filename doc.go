// Package main provides the entry point of Lumenboard, a self-hosted business
// intelligence web application. It serves a JSON API with the Fiber framework,
// keeps its own state in a gorm managed database and guides the first
// administrator through the initial setup: account, data source and site
// preferences.
package main
