// Package httpx holds the request parsing and error rendering shared by the handlers.
package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"procurement-backend/internal/logging"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries per-field failures to the error handler.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ParseBody decodes the JSON body into dst and runs its validate tags.
func ParseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return Validate(dst)
}

func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return &ValidationError{Fields: processValidationErrors(ve)}
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func processValidationErrors(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

// QueryID reads an optional numeric query parameter; absent or invalid values yield 0.
func QueryID(c *fiber.Ctx, name string) uint {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// QueryList splits a comma separated query parameter.
func QueryList(c *fiber.Ctx, name string) []string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizePhone parses a phone number and returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	p, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// Fail turns a service error into a fiber error. Unknown errors are logged
// and reported with msg.
func Fail(logger *logrus.Logger, module, funcName string, err error, msg string) error {
	var fe *fiber.Error
	var ve *ValidationError
	var te *status.TransitionError
	var ue *status.UnknownStatusError
	switch {
	case errors.As(err, &fe), errors.As(err, &ve):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, "A record with the same number already exists")
	case errors.As(err, &ue):
		return fiber.NewError(fiber.StatusBadRequest, ue.Error())
	case errors.As(err, &te):
		return fiber.NewError(fiber.StatusConflict, te.Error())
	}
	logging.LogError(logger, module, funcName, msg, nil, err)
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  ve.Error(),
				"fields": ve.Fields,
			})
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		logging.LogError(logger, "http", "ErrorHandler", c.Path(), nil, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unexpected server error",
		})
	}
}

// StatusFilter reads ?status=a,b and rejects values outside the vocabulary.
func StatusFilter[T ~string](c *fiber.Ctx, kind status.Kind) ([]T, error) {
	raw := QueryList(c, "status")
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		if !status.Valid(kind, s) {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unknown status %q", s))
		}
		out = append(out, T(s))
	}
	return out, nil
}

