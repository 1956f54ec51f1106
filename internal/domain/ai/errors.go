package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrTransport covers network, provider and timeout failures of a model call.
var ErrTransport = errors.New("ai call failed")

// ErrSchemaInvalid means the model answered but the payload did not match the expected shape.
var ErrSchemaInvalid = errors.New("ai response failed schema validation")
