package kernel

import (
	"errors"
	"fmt"
)

// Status is a raw status code returned by a kernel service. Zero is success,
// failures are negative.
type Status int32

const (
	OK                        Status = 0
	Permission                Status = -1
	InvalidHandle             Status = -2
	InvalidMemory             Status = -3
	Busy                      Status = -4
	InvalidOperation          Status = -5
	InvalidString             Status = -6
	InsufficientLength        Status = -7
	ResourceLimitExhausted    Status = -8
	InvalidState              Status = -9
	InvalidOption             Status = -10
	InsufficientMemory        Status = -11
	UnsupportedKernelFunction Status = -12
	KernelFunctionWouldBlock  Status = -13
	FinishedEnumerate         Status = -14
	Timeout                   Status = -15
	Interrupted               Status = -16
	Killed                    Status = -17
	Deadlocked                Status = -18
	UnsupportedOperation      Status = -19
	Pending                   Status = -20
	DoesNotExist              Status = -21
	AlreadyExists             Status = -22
	UnknownDevice             Status = -23
	WouldBlock                Status = -24
	DeviceFull                Status = -25
	DeviceUnavailable         Status = -26
	LinkResolutionLoop        Status = -27
	OrphanedObjects           Status = -28
	ClosedRemotely            Status = -29
	ConnectionInterrupted     Status = -30
	AddressNotAvailable       Status = -31
	Signaled                  Status = -32
	MappingInaccessible       Status = -33
	PrivilegeCheckFailed      Status = -34
	InterpError               Status = -35
)

var statusNames = map[Status]string{
	OK:                        "OK",
	Permission:                "Permission",
	InvalidHandle:             "InvalidHandle",
	InvalidMemory:             "InvalidMemory",
	Busy:                      "Busy",
	InvalidOperation:          "InvalidOperation",
	InvalidString:             "InvalidString",
	InsufficientLength:        "InsufficientLength",
	ResourceLimitExhausted:    "ResourceLimitExhausted",
	InvalidState:              "InvalidState",
	InvalidOption:             "InvalidOption",
	InsufficientMemory:        "InsufficientMemory",
	UnsupportedKernelFunction: "UnsupportedKernelFunction",
	KernelFunctionWouldBlock:  "KernelFunctionWouldBlock",
	FinishedEnumerate:         "FinishedEnumerate",
	Timeout:                   "Timeout",
	Interrupted:               "Interrupted",
	Killed:                    "Killed",
	Deadlocked:                "Deadlocked",
	UnsupportedOperation:      "UnsupportedOperation",
	Pending:                   "Pending",
	DoesNotExist:              "DoesNotExist",
	AlreadyExists:             "AlreadyExists",
	UnknownDevice:             "UnknownDevice",
	WouldBlock:                "WouldBlock",
	DeviceFull:                "DeviceFull",
	DeviceUnavailable:         "DeviceUnavailable",
	LinkResolutionLoop:        "LinkResolutionLoop",
	OrphanedObjects:           "OrphanedObjects",
	ClosedRemotely:            "ClosedRemotely",
	ConnectionInterrupted:     "ConnectionInterrupted",
	AddressNotAvailable:       "AddressNotAvailable",
	Signaled:                  "Signaled",
	MappingInaccessible:       "MappingInaccessible",
	PrivilegeCheckFailed:      "PrivilegeCheckFailed",
	InterpError:               "InterpError",
}

// String returns the symbolic name of the status, or its number if unknown.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Error implements error.
func (s Status) Error() string {
	return fmt.Sprintf("kernel status %d (%s)", int32(s), s.String())
}

// StatusOf extracts the kernel status from err, if there is one.
func StatusOf(err error) (Status, bool) {
	var s Status
	if errors.As(err, &s) {
		return s, true
	}
	return OK, false
}
