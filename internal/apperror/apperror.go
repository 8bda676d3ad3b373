package apperror

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки, по которой транспортный слой выбирает код ответа.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"

	// KindConfiguration — ошибка сборки приложения, например неподдерживаемая локаль календаря.
	KindConfiguration Kind = "configuration"
)

// Error несёт категорию и сообщение. Для NotFound, Validation и Conflict
// сообщение уходит клиенту как есть.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string, err error) error      { return New(KindNotFound, msg, err) }
func Validation(msg string, err error) error    { return New(KindValidation, msg, err) }
func Conflict(msg string, err error) error      { return New(KindConflict, msg, err) }
func Configuration(msg string, err error) error { return New(KindConfiguration, msg, err) }

// Configurationf форматирует сообщение ошибки конфигурации.
func Configurationf(format string, args ...interface{}) error {
	return New(KindConfiguration, fmt.Sprintf(format, args...), nil)
}

// KindOf возвращает категорию первой *Error в цепочке.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
