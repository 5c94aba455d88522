package id

import "github.com/teris-io/shortid"

// ShortId generates a short, URL-safe id. Falls back to a UUID without
// dashes if the generator fails.
func ShortId() string {
	sid, err := shortid.Generate()
	if err != nil {
		return GetUUIDWithoutDashes()
	}
	return sid
}
