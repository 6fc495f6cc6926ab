package kernel

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories shown to users. Every kernel
// status is funneled into exactly one Kind before it is displayed.
//
// Kind implements error so callers can test categories with errors.Is:
//
//	if errors.Is(err, kernel.ErrNotFound) { ... }
type Kind int

const (
	ErrUncategorized Kind = iota
	ErrNotFound
	ErrPermissionDenied
	ErrConnectionRefused
	ErrConnectionReset
	ErrHostUnreachable
	ErrNetworkUnreachable
	ErrConnectionAborted
	ErrNotConnected
	ErrAddrInUse
	ErrAddrNotAvailable
	ErrNetworkDown
	ErrBrokenPipe
	ErrAlreadyExists
	ErrWouldBlock
	ErrNotADirectory
	ErrIsADirectory
	ErrDirectoryNotEmpty
	ErrReadOnlyFilesystem
	ErrFilesystemLoop
	ErrStaleNetworkFileHandle
	ErrInvalidInput
	ErrInvalidData
	ErrTimedOut
	ErrWriteZero
	ErrStorageFull
	ErrNotSeekable
	ErrQuotaExceeded
	ErrFileTooLarge
	ErrResourceBusy
	ErrExecutableFileBusy
	ErrDeadlock
	ErrCrossesDevices
	ErrTooManyLinks
	ErrInvalidFilename
	ErrArgumentListTooLong
	ErrInterrupted
	ErrUnsupported
	ErrUnexpectedEOF
	ErrOutOfMemory
	ErrInProgress
	ErrInvalidState
	ErrOther
)

var kindText = [...]string{
	ErrUncategorized:          "(Uncategorized)",
	ErrNotFound:               "Not Found",
	ErrPermissionDenied:       "Permission Denied",
	ErrConnectionRefused:      "Connection Refused",
	ErrConnectionReset:        "Connection Reset",
	ErrHostUnreachable:        "Host Unreachable",
	ErrNetworkUnreachable:     "Network Unreachable",
	ErrConnectionAborted:      "Connection Aborted",
	ErrNotConnected:           "Not Connected",
	ErrAddrInUse:              "Address in Use",
	ErrAddrNotAvailable:       "Address Not Available",
	ErrNetworkDown:            "Network Down",
	ErrBrokenPipe:             "Broken Pipe",
	ErrAlreadyExists:          "Already Exists",
	ErrWouldBlock:             "Would Block",
	ErrNotADirectory:          "Not A Directory",
	ErrIsADirectory:           "Is A Directory",
	ErrDirectoryNotEmpty:      "Directory Not Empty",
	ErrReadOnlyFilesystem:     "Read Only Filesystem",
	ErrFilesystemLoop:         "Filesystem Loop",
	ErrStaleNetworkFileHandle: "Stale Remote Object",
	ErrInvalidInput:           "Invalid Input",
	ErrInvalidData:            "Invalid Data",
	ErrTimedOut:               "Timed Out",
	ErrWriteZero:              "Write returned 0",
	ErrStorageFull:            "Storage Full",
	ErrNotSeekable:            "Not Seekable",
	ErrQuotaExceeded:          "Quota Exceeded",
	ErrFileTooLarge:           "File Too Large",
	ErrResourceBusy:           "Resource Busy",
	ErrExecutableFileBusy:     "Text Busy",
	ErrDeadlock:               "Deadlock (Avoided)",
	ErrCrossesDevices:         "Crosses Devices",
	ErrTooManyLinks:           "Too Many (Hard) Links",
	ErrInvalidFilename:        "Invalid Filename",
	ErrArgumentListTooLong:    "Argument List Too Long",
	ErrInterrupted:            "Interrupted",
	ErrUnsupported:            "Unsupported",
	ErrUnexpectedEOF:          "Unexpected EOF",
	ErrOutOfMemory:            "Out Of Memory",
	ErrInProgress:             "In Progress",
	ErrInvalidState:           "Invalid Object State",
	ErrOther:                  "Other Error",
}

// String returns the display text of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindText) {
		return kindText[ErrUncategorized]
	}
	return kindText[k]
}

// Error implements error.
func (k Kind) Error() string {
	return k.String()
}

// statusKinds is the fixed status to kind table. Statuses missing from the
// table are uncategorized.
var statusKinds = map[Status]Kind{
	Permission:                ErrPermissionDenied,
	InvalidHandle:             ErrInvalidInput,
	InvalidMemory:             ErrInvalidInput,
	Busy:                      ErrResourceBusy,
	InvalidOperation:          ErrInvalidInput,
	InvalidString:             ErrInvalidData,
	InsufficientLength:        ErrInvalidInput,
	ResourceLimitExhausted:    ErrQuotaExceeded,
	InvalidState:              ErrInvalidState,
	InvalidOption:             ErrUnsupported,
	InsufficientMemory:        ErrOutOfMemory,
	UnsupportedKernelFunction: ErrUnsupported,
	KernelFunctionWouldBlock:  ErrWouldBlock,
	FinishedEnumerate:         ErrUncategorized,
	Timeout:                   ErrTimedOut,
	Interrupted:               ErrInterrupted,
	Killed:                    ErrUncategorized,
	Deadlocked:                ErrDeadlock,
	UnsupportedOperation:      ErrUnsupported,
	Pending:                   ErrInProgress,
	DoesNotExist:              ErrNotFound,
	AlreadyExists:             ErrAlreadyExists,
	UnknownDevice:             ErrInvalidData,
	WouldBlock:                ErrWouldBlock,
	DeviceFull:                ErrStorageFull,
	DeviceUnavailable:         ErrResourceBusy,
	LinkResolutionLoop:        ErrFilesystemLoop,
	OrphanedObjects:           ErrUncategorized,
	ClosedRemotely:            ErrConnectionReset,
	ConnectionInterrupted:     ErrConnectionAborted,
	AddressNotAvailable:       ErrAddrNotAvailable,
	Signaled:                  ErrUncategorized,
	MappingInaccessible:       ErrInvalidInput,
	PrivilegeCheckFailed:      ErrPermissionDenied,
	InterpError:               ErrNotFound,
}

// KindOf maps a kernel status to its error kind. OK maps to ErrOther since a
// success code carries no failure category.
func KindOf(s Status) Kind {
	if s == OK {
		return ErrOther
	}
	if kind, ok := statusKinds[s]; ok {
		return kind
	}
	return ErrUncategorized
}

// Error is a categorized failure of an operation.
type Error struct {
	// Kind is the category shown to the user.
	Kind Kind
	// Op names the failing operation, e.g. a command name.
	Op string
	// Err is the underlying cause, may be nil.
	Err error
}

// NewError creates an Error of the given kind with a plain text cause.
func NewError(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

func (e *Error) Error() string {
	var msg string
	if e.Op != "" {
		msg = e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// Translate funnels err through the status table. Errors that already carry a
// Kind are returned as-is, raw statuses take the kind from the table and
// anything else is uncategorized. A nil err stays nil.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var kerr *Error
	if errors.As(err, &kerr) {
		return err
	}

	if s, ok := StatusOf(err); ok {
		return &Error{Kind: KindOf(s), Op: op, Err: err}
	}

	return &Error{Kind: ErrUncategorized, Op: op, Err: err}
}

// KindFromError returns the kind carried by err, or ErrUncategorized.
func KindFromError(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	if s, ok := StatusOf(err); ok {
		return KindOf(s)
	}
	return ErrUncategorized
}
