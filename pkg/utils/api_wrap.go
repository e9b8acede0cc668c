package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Fields  []FieldError `json:"fields,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		TraceID: c.GetString("trace_id"),
	})
}

// HandleServiceError renders err as a JSON error body. Errors that are not
// part of the API contract are logged and reported as a generic 500.
func HandleServiceError(c *gin.Context, err error) {
	var fieldErr *FieldValidationError

	switch {
	case errors.As(err, &fieldErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos.",
			Code:    "invalid",
			Fields:  fieldErr.Fields,
			TraceID: c.GetString("trace_id"),
		})
	case errors.Is(err, ErrMissingField):
		RespondError(c, http.StatusBadRequest, "missing_field", "Preencha todos os campos.")
	case errors.Is(err, ErrDuplicateAccount):
		RespondError(c, http.StatusBadRequest, "duplicate_account", "Email já cadastrado.")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusBadRequest, "invalid_credentials", "Credenciais inválidas")
	case errors.Is(err, ErrInvalidRequest):
		RespondError(c, http.StatusBadRequest, "parse_error", "Corpo da requisição inválido.")
	case errors.Is(err, ErrReferentialIntegrity):
		RespondError(c, http.StatusBadRequest, "referential_integrity", "Registro relacionado não existe.")
	case errors.Is(err, ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "not_authenticated", "As credenciais de autenticação não foram fornecidas.")
	case errors.Is(err, ErrCSRFFailed):
		RespondError(c, http.StatusForbidden, "csrf_failed", "Token CSRF ausente ou incorreto.")
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", "Não encontrado.")
	default:
		Logger(c).Error("unhandled service error", zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "server_error", "Erro interno do servidor.")
	}
}

// Logger returns the request scoped logger installed by the logging
// middleware, or a no-op logger.
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
