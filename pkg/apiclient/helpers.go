package apiclient

import (
	"fmt"
	"net/url"
)

// getResource performs a GET request to the given path and decodes the response
// body into a value of type T.
func getResource[T any](c *Client, path string) (*T, error) {
	var result T
	if err := c.get(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// createResource performs a POST request to the given path with the provided body
// and decodes the response into a value of type T.
func createResource[T any](c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// resourcePath builds a resource path with fmt.Sprintf.
func resourcePath(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// withQuery appends the non-empty values of q to path.
func withQuery(path string, q map[string]string) string {
	v := url.Values{}
	for k, val := range q {
		if val != "" {
			v.Set(k, val)
		}
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
