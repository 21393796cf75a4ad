package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL points baseURL at databaseName and defaults sslmode to disable.
// An empty databaseName returns baseURL unchanged; an unparsable baseURL falls back to
// plain string joining.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + databaseName
	}

	u.Path = "/" + databaseName
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
