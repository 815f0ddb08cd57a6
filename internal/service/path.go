package service

import (
	"fmt"
	"regexp"
)

// configPathRe matches "<root>/<product>/<id>/<name>" where root is either an
// organization marker ("datadog/<digits>") or the "employee" literal.
var configPathRe = regexp.MustCompile(`^(datadog/\d+|employee)/([^/]+)/([^/]+)/([^/]+)$`)

func parsePath(path string) (product, id string, err error) {
	m := configPathRe.FindStringSubmatch(path)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return m[2], m[3], nil
}
