package util

import "strings"

// AbsoluteURL resolves a stored image reference against baseURL. References
// that already carry a scheme, such as S3 object URLs, are returned as is.
func AbsoluteURL(baseURL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
