//go:build unix

package hostkernel

import (
	"github.com/josephlewis42/minish/core/kernel"
	"golang.org/x/sys/unix"
)

var errnoStatus = map[unix.Errno]kernel.Status{
	unix.EPERM:         kernel.Permission,
	unix.EACCES:        kernel.Permission,
	unix.ENOENT:        kernel.DoesNotExist,
	unix.ENOTDIR:       kernel.InvalidOperation,
	unix.EISDIR:        kernel.InvalidOperation,
	unix.EINVAL:        kernel.InvalidOption,
	unix.EEXIST:        kernel.AlreadyExists,
	unix.EBUSY:         kernel.Busy,
	unix.ETXTBSY:       kernel.Busy,
	unix.EAGAIN:        kernel.WouldBlock,
	unix.ENOMEM:        kernel.InsufficientMemory,
	unix.EINTR:         kernel.Interrupted,
	unix.ELOOP:         kernel.LinkResolutionLoop,
	unix.ENOEXEC:       kernel.InterpError,
	unix.ENOSPC:        kernel.DeviceFull,
	unix.ETIMEDOUT:     kernel.Timeout,
	unix.EDEADLK:       kernel.Deadlocked,
	unix.ENOSYS:        kernel.UnsupportedKernelFunction,
	unix.E2BIG:         kernel.InsufficientLength,
	unix.EMFILE:        kernel.ResourceLimitExhausted,
	unix.ENFILE:        kernel.ResourceLimitExhausted,
	unix.EBADF:         kernel.InvalidHandle,
	unix.EFAULT:        kernel.InvalidMemory,
	unix.ECHILD:        kernel.InvalidState,
	unix.ENODEV:        kernel.UnknownDevice,
	unix.ENXIO:         kernel.DeviceUnavailable,
	unix.ECONNRESET:    kernel.ClosedRemotely,
	unix.EADDRNOTAVAIL: kernel.AddressNotAvailable,
}
