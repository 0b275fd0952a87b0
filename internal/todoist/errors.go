package todoist

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"todoink/internal/services"
)

// APIError captures a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	RawBody    []byte
}

func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return fmt.Sprintf("todoist: status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("todoist: status %d", e.StatusCode)
}

func buildAPIError(status int, body []byte) *APIError {
	ae := &APIError{StatusCode: status, RawBody: body, Message: strings.TrimSpace(string(body))}
	if strings.HasPrefix(ae.Message, "{") {
		var obj struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &obj); err == nil {
			switch {
			case obj.Error != "":
				ae.Message = obj.Error
			case obj.Message != "":
				ae.Message = obj.Message
			}
		}
	}
	if len(ae.Message) > 200 {
		ae.Message = ae.Message[:200]
	}
	return ae
}

// classifyStatus picks the taxonomy marker for a non-2xx status.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return services.ErrAuth
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return services.ErrNetwork
	default:
		// Any other status means the endpoint answered with something this
		// client cannot use.
		return services.ErrParse
	}
}
