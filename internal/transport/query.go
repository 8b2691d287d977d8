// Package transport executes authenticated calls against the Wave REST API
// and classifies failed responses.
package transport

import (
	"net/url"

	"github.com/google/go-querystring/query"
)

// encodeQuery turns a GET payload into query values. Structs use `url` tags.
func encodeQuery(payload any) (url.Values, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return v, nil
	case map[string]string:
		values := make(url.Values, len(v))
		for key, value := range v {
			values.Set(key, value)
		}
		return values, nil
	default:
		return query.Values(payload)
	}
}
