package listing

import (
	"fmt"

	"car-passion/cmd/api/httpclient"
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient user-facing message produced during a fetch.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

const FailedLoadMessage = "Failed to load cars. Please check your connection and try again."

func retryNotice(n, total int) Notice {
	return Notice{
		Level:   NoticeInfo,
		Message: fmt.Sprintf("Network issue detected. Retrying... (%d/%d)", n, total),
	}
}

// failureNotice prefers the server message of a ServerError.
func failureNotice(err error) Notice {
	if httpclient.IsKind(err, httpclient.KindServer) {
		if msg := httpclient.Message(err); msg != "" {
			return Notice{Level: NoticeError, Message: msg}
		}
	}
	return Notice{Level: NoticeError, Message: FailedLoadMessage}
}
