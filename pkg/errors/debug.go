package errors

import (
	"errors"
	"fmt"
)

// maxChainDepth bounds how many wrapped causes Dump walks.
const maxChainDepth = 8

// ErrorDump is the log-friendly view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	HTTPStatus int      `json:"http_status,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	Details    any      `json:"details,omitempty"`
}

// Dump flattens err and its wrapped causes for structured logging.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		meta := MetadataFor(typed.Code())
		d.Code = typed.Code()
		d.HTTPStatus = meta.HTTPStatus
		d.Retryable = meta.Retryable
		d.Details = typed.Details()
	}

	for e := err; e != nil && len(d.Chain) < maxChainDepth; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}
