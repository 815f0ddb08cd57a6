package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// statusErrors maps well-known failure statuses of the config endpoint to
// their sentinels. Anything else that is not 2xx becomes ErrUnexpectedStatus.
var statusErrors = map[int]error{
	http.StatusBadRequest:          ErrBadRequest,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusTooManyRequests:     ErrTooManyRequests,
	http.StatusInternalServerError: ErrInternalServerError,
	http.StatusBadGateway:          ErrBadGateway,
	http.StatusServiceUnavailable:  ErrServiceUnavailable,
}

func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	detail := strings.TrimSpace(string(resp.Body()))
	if detail == "" {
		detail = http.StatusText(status)
	}

	if sentinel, ok := statusErrors[status]; ok {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return fmt.Errorf("%w: http %d: %s", ErrUnexpectedStatus, status, detail)
}

// isRetryable reports whether a failed status is worth another attempt.
func isRetryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}
