package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeTransport         ErrorCode = "TRANSPORT_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation, Forbidden, State, Conflict и Internal - короткие конструкторы
// для основных категорий ошибок домена.
func Validation(message string) *AppError { return New(ErrCodeValidation, message) }

func Forbidden(message string) *AppError { return New(ErrCodeForbidden, message) }

func State(message string) *AppError { return New(ErrCodeInvalidState, message) }

func Conflict(message string) *AppError { return New(ErrCodeConflict, message) }

func NotFound(message string) *AppError { return New(ErrCodeNotFound, message) }

func Internal(err error) *AppError {
	return Wrap(err, ErrCodeInternal, "внутренняя ошибка сервера")
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeInsufficientFunds:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeTransport:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для ошибок вне таксономии.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsAuthorization покрывает и чужой ресурс, и нехватку средств.
func IsAuthorization(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeForbidden || code == ErrCodeInsufficientFunds
}

func IsValidation(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeValidation || code == ErrCodeBadRequest
}

func IsState(err error) bool {
	return CodeOf(err) == ErrCodeInvalidState
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

var (
	ErrGigNotFound        = New(ErrCodeNotFound, "заказ не найден")
	ErrProposalNotFound   = New(ErrCodeNotFound, "предложение не найдено")
	ErrContractNotFound   = New(ErrCodeNotFound, "контракт не найден")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверный email или пароль")
	ErrInsufficientFunds  = New(ErrCodeInsufficientFunds, "недостаточно средств на балансе")
	ErrDuplicateProposal  = New(ErrCodeConflict, "вы уже отправили предложение на этот заказ")
	ErrDuplicateContract  = New(ErrCodeConflict, "по этому заказу уже заключён контракт")
	ErrEmailTaken         = New(ErrCodeConflict, "email уже зарегистрирован")
)
