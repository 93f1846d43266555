//go:build !linux

package devices

type deviceInfo struct {
	driver  string
	card    string
	busInfo string
	capture bool
	inputs  []Input
}

func queryDevice(string) (*deviceInfo, error) {
	return nil, ErrUnsupported
}

func setInput(string, int) error {
	return ErrUnsupported
}
