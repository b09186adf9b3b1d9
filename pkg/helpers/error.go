package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"

	"github.com/dc4eu/didengine/pkg/model"
)

var (
	// ErrNoTransactionID is returned when transactionID is not present
	ErrNoTransactionID = NewError("NO_TRANSACTION_ID")

	// ErrInternalServerError error for internal server error
	ErrInternalServerError = NewError("INTERNAL_SERVER_ERROR")
)

// Error is a struct that represents an error
type Error struct {
	Title string `json:"title"`
	Err   any    `json:"details"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("Error: [%s] %+v", e.Title, e.Err)
	}
	return fmt.Sprintf("Error: [%s]", e.Title)
}

// ErrorResponse is a struct that represents an error response in JSON from REST API
type ErrorResponse struct {
	Error *Error `json:"error"`
}

func NewError(title string) *Error {
	return &Error{Title: title}
}

func NewErrorDetails(title string, err any) *Error {
	return &Error{Title: title, Err: err}
}

// NewErrorFromError creates a new Error from an error, formatting the
// well-known error shapes this engine produces (JSON decode errors,
// validator.ValidationErrors) with field-level detail, and falling back to
// a flat internal_server_error otherwise.
func NewErrorFromError(err error) *Error {
	if err == nil {
		return nil
	}

	if pbErr, ok := err.(*Error); ok {
		return pbErr
	}

	if jsonUnmarshalTypeError, ok := err.(*json.UnmarshalTypeError); ok {
		return &Error{Title: "json_type_error", Err: formatJSONUnmarshalTypeError(jsonUnmarshalTypeError)}
	}
	if jsonSyntaxError, ok := err.(*json.SyntaxError); ok {
		return &Error{Title: "json_syntax_error", Err: map[string]any{"position": jsonSyntaxError.Offset, "error": jsonSyntaxError.Error()}}
	}
	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		return &Error{Title: "validation_error", Err: formatValidationErrors(validatorErr)}
	}

	var opErr *model.OpError
	if errors.As(err, &opErr) {
		return &Error{Title: opErrorTitle(opErr), Err: opErr.Error()}
	}

	return NewErrorDetails("internal_server_error", err.Error())
}

func formatValidationErrors(err validator.ValidationErrors) []map[string]any {
	v := make([]map[string]any, 0)
	for _, e := range err {
		splits := strings.SplitN(e.Namespace(), ".", 2)
		namespace := e.Namespace()
		if len(splits) == 2 {
			namespace = splits[1]
		}
		v = append(v, map[string]any{
			"field":           e.Field(),
			"namespace":       namespace,
			"type":            e.Kind().String(),
			"validation":      e.Tag(),
			"validationParam": e.Param(),
			"value":           e.Value(),
		})
	}
	return v
}

func formatJSONUnmarshalTypeError(err *json.UnmarshalTypeError) []map[string]any {
	return []map[string]any{
		{
			"field":    err.Field,
			"expected": err.Type.Kind().String(),
			"actual":   err.Value,
		},
	}
}

func opErrorTitle(opErr *model.OpError) string {
	switch {
	case errors.Is(opErr, model.ErrNotFound):
		return "not_found"
	case errors.Is(opErr, model.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(opErr, model.ErrIntegrity):
		return "integrity_error"
	case errors.Is(opErr, model.ErrSignature):
		return "signature_error"
	case errors.Is(opErr, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(opErr, model.ErrVault):
		return "vault_error"
	case errors.Is(opErr, model.ErrStorage):
		return "storage_error"
	case errors.Is(opErr, model.ErrEncoding):
		return "encoding_error"
	default:
		return "internal_server_error"
	}
}

// Problem404 returns a bare 404 problem, for the not-found branch of the
// thin HTTP wrapper.
func Problem404() *problems.Problem {
	return problems.NewStatusProblem(404)
}

// ProblemForError maps one of this engine's error kinds (§7) to an HTTP
// problem with the status code a caller should see: not-found → 404,
// invalid-argument/encoding → 400, signature → 401, invalid-state → 422,
// integrity → 409, vault/storage → 502, anything else → 500.
func ProblemForError(err error) *problems.Problem {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return problems.NewStatusProblem(404)
	case errors.Is(err, model.ErrInvalidArgument), errors.Is(err, model.ErrEncoding):
		return problems.NewStatusProblem(400)
	case errors.Is(err, model.ErrSignature):
		return problems.NewStatusProblem(401)
	case errors.Is(err, model.ErrInvalidState):
		return problems.NewStatusProblem(422)
	case errors.Is(err, model.ErrIntegrity):
		return problems.NewStatusProblem(409)
	case errors.Is(err, model.ErrVault), errors.Is(err, model.ErrStorage):
		return problems.NewStatusProblem(502)
	default:
		return problems.NewStatusProblem(500)
	}
}
