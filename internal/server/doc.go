// Package server implements the mock API's HTTP listener and its two
// endpoints: POST /login, which checks one fixed credential and returns a
// fixed bearer token, and POST /uploads, which accepts a multipart file
// from a holder of that token and writes it to the upload directory.
// Every other request gets a JSON 404.
package server
