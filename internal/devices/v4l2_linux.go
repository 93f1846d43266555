//go:build linux

package devices

import (
	"bytes"
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request numbers from linux/videodev2.h.
const (
	vidiocQueryCap  = 0x80685600 // _IOR('V', 0, struct v4l2_capability)
	vidiocEnumInput = 0xC050561A // _IOWR('V', 26, struct v4l2_input)
	vidiocSInput    = 0xC0045627 // _IOWR('V', 39, int)

	v4l2CapVideoCapture = 0x00000001
	v4l2CapDeviceCaps   = 0x80000000

	// A device never has more inputs than this in practice.
	maxInputs = 16
)

type v4l2Capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

type v4l2Input struct {
	index        uint32
	name         [32]byte
	typ          uint32
	audioset     uint32
	tuner        uint32
	std          uint64
	status       uint32
	capabilities uint32
	reserved     [3]uint32
}

type deviceInfo struct {
	driver  string
	card    string
	busInfo string
	capture bool
	inputs  []Input
}

func queryDevice(path string) (*deviceInfo, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	var c v4l2Capability
	if err := ioctl(fd, vidiocQueryCap, unsafe.Pointer(&c)); err != nil {
		return nil, err
	}

	caps := c.capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = c.deviceCaps
	}

	info := &deviceInfo{
		driver:  cstr(c.driver[:]),
		card:    cstr(c.card[:]),
		busInfo: cstr(c.busInfo[:]),
		capture: caps&v4l2CapVideoCapture != 0,
	}
	if info.capture {
		info.inputs = enumInputs(fd)
	}
	return info, nil
}

func enumInputs(fd int) []Input {
	var inputs []Input
	for i := range maxInputs {
		in := v4l2Input{index: uint32(i)}
		if err := ioctl(fd, vidiocEnumInput, unsafe.Pointer(&in)); err != nil {
			break
		}
		inputs = append(inputs, Input{Index: i, Name: cstr(in.name[:])})
	}
	return inputs
}

func setInput(path string, index int) error {
	if index < 0 {
		return errors.New("input index must not be negative")
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.IoctlSetPointerInt(fd, vidiocSInput, index)
}

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
