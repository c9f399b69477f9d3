// Package user holds the persisted player record shared by the SOAP account
// methods, token issuance, the store and the profile routes.
package user

// User is one row of the users table. Inventory and Data hold JSON documents;
// an empty string means the column is NULL and defaults apply on first read.
type User struct {
	UUID          string
	Inventory     string
	Data          string
	ConsoleID     string
	ConsoleTicket string
	IP            string
}
