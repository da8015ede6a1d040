// Package failure defines the error taxonomy shared by every ytsub package.
//
// A *failure.Error carries a Kind. Every kind except KindInternal belongs to
// the "validation" group: the user caused it and can fix it by editing their
// input. Anything else that escapes the pipeline (plain errors, panics, engine
// crashes) is internal and gets reported with full diagnostic detail.
package failure

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal         Kind = iota // Unexpected; reported with a trace.
	KindValidation                   // Generic user/configuration error.
	KindStringFormatting             // Malformed {variable} template.
	KindVariableNotFound             // Template references an undefined variable.
	KindDownloadArchive              // Malformed download archive or mapping file.
	KindFileNotFound                 // A user-referenced file does not exist.
	KindInvalidConfig                // Bad YAML or unknown config field.
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindValidation:       "validation",
	KindStringFormatting: "string formatting",
	KindVariableNotFound: "variable not found",
	KindDownloadArchive:  "download archive",
	KindFileNotFound:     "file not found",
	KindInvalidConfig:    "invalid config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsValidation reports whether k belongs to the user-error group.
func (k Kind) IsValidation() bool {
	_, known := kindNames[k]
	return known && k != KindInternal
}

// Error is the tagged-variant error used across ytsub. Msg is the text shown
// to the user; Err is the optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil && e.Kind == KindInternal:
		return e.Msg + ": " + e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Format implements fmt.Formatter. %+v prints the kind, the message and the
// cause chain including any stack recorded by github.com/pkg/errors.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "[%s] %s", e.Kind, e.Msg)
			if e.Err != nil {
				fmt.Fprintf(s, "\ncaused by: %+v", e.Err)
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// New returns a failure of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns a failure of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a user-facing message. A nil err yields nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Internal marks err as an internal failure and records the call stack. Errors
// that already carry a Kind are returned unchanged.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: KindInternal, Msg: msg, Err: errors.WithStack(err)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when the chain holds none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a user-caused failure.
func IsValidation(err error) bool {
	return err != nil && KindOf(err).IsValidation()
}
