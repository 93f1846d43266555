// Package devices discovers capture hardware on the host and selects the
// analog input of V4L2 devices.
package devices

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/smazurov/vhsnode/internal/logging"
)

// ErrUnsupported is returned by input selection on hosts without V4L2.
var ErrUnsupported = errors.New("input selection is not supported on this platform")

// VideoDevice is a V4L2 video node.
type VideoDevice struct {
	Path    string  `json:"path"`
	Name    string  `json:"name"`
	Driver  string  `json:"driver,omitempty"`
	BusInfo string  `json:"busInfo,omitempty"`
	Index   int     `json:"index"`
	Inputs  []Input `json:"inputs"`
}

// Input is one selectable analog input of a video device.
type Input struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// AudioDevice is an ALSA PCM device with a capture stream.
type AudioDevice struct {
	ID       string `json:"id"` // ALSA device string, e.g. "hw:1,0"
	Card     int    `json:"card"`
	Device   int    `json:"device"`
	CardID   string `json:"cardId,omitempty"`
	CardName string `json:"cardName,omitempty"`
	Name     string `json:"name"`
}

// Host reads device information below configurable roots so tests can point
// it at a fake tree.
type Host struct {
	SysRoot  string
	ProcRoot string
	DevRoot  string
	logger   *slog.Logger
}

// NewHost returns a Host reading the live system.
func NewHost() *Host {
	return &Host{
		SysRoot:  "/sys",
		ProcRoot: "/proc",
		DevRoot:  "/dev",
		logger:   logging.GetLogger("devices"),
	}
}

// Exists reports whether a device node exists.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exists reports whether a device node exists on the host.
func (h *Host) Exists(path string) bool {
	return Exists(path)
}

// SetInput selects the analog input of a V4L2 device, for example composite
// or S-Video on capture sticks that have both.
func (h *Host) SetInput(device string, index int) error {
	if err := setInput(device, index); err != nil {
		return fmt.Errorf("failed to select input %d on %s: %w", index, device, err)
	}
	h.log().Info("Selected video input", "device", device, "input", index)
	return nil
}

// ListVideo returns video capture nodes, sorted by device number. Nodes that
// can be queried and do not capture video (metadata nodes) are skipped.
func (h *Host) ListVideo() ([]VideoDevice, error) {
	classDir := filepath.Join(h.SysRoot, "class", "video4linux")
	entries, err := os.ReadDir(classDir)
	if errors.Is(err, fs.ErrNotExist) {
		return h.globVideo()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read video4linux directory: %w", err)
	}

	devices := make([]VideoDevice, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "video") {
			continue
		}
		sysDir := filepath.Join(classDir, entry.Name())
		dev := VideoDevice{
			Path:  filepath.Join(h.DevRoot, entry.Name()),
			Name:  readTrimmed(filepath.Join(sysDir, "name")),
			Index: readSysfsInt(filepath.Join(sysDir, "index")),
		}
		if dev.Name == "" {
			dev.Name = entry.Name()
		}
		if !h.probe(&dev) {
			continue
		}
		devices = append(devices, dev)
	}

	sortVideo(devices)
	return devices, nil
}

func (h *Host) globVideo() ([]VideoDevice, error) {
	paths, err := filepath.Glob(filepath.Join(h.DevRoot, "video*"))
	if err != nil {
		return nil, err
	}
	devices := make([]VideoDevice, 0, len(paths))
	for _, path := range paths {
		dev := VideoDevice{Path: path, Name: filepath.Base(path)}
		if !h.probe(&dev) {
			continue
		}
		devices = append(devices, dev)
	}
	sortVideo(devices)
	return devices, nil
}

// probe fills in driver details and inputs. It reports false only when the
// node answered and is not a video capture device.
func (h *Host) probe(dev *VideoDevice) bool {
	info, err := queryDevice(dev.Path)
	if err != nil {
		h.log().Debug("Failed to query video device", "path", dev.Path, "error", err)
		return true
	}
	if !info.capture {
		return false
	}
	if info.card != "" {
		dev.Name = info.card
	}
	dev.Driver = info.driver
	dev.BusInfo = info.busInfo
	dev.Inputs = info.inputs
	return true
}

var pcmLine = regexp.MustCompile(`^(\d+)-(\d+):\s*([^:]*?)\s*:\s*([^:]*?)\s*:(.*)$`)

// ListAudio returns ALSA PCM devices that have a capture stream, parsed from
// /proc/asound/pcm. A host without ALSA has no devices.
func (h *Host) ListAudio() ([]AudioDevice, error) {
	f, err := os.Open(filepath.Join(h.ProcRoot, "asound", "pcm"))
	if errors.Is(err, fs.ErrNotExist) {
		return []AudioDevice{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ALSA devices: %w", err)
	}
	defer f.Close()

	cards := h.cardNames()
	devices := []AudioDevice{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := pcmLine.FindStringSubmatch(scanner.Text())
		if m == nil || !strings.Contains(m[5], "capture") {
			continue
		}
		card, _ := strconv.Atoi(m[1])
		device, _ := strconv.Atoi(m[2])
		name := m[4]
		if name == "" {
			name = m[3]
		}
		dev := AudioDevice{
			ID:     fmt.Sprintf("hw:%d,%d", card, device),
			Card:   card,
			Device: device,
			Name:   name,
		}
		if c, ok := cards[card]; ok {
			dev.CardID = c.id
			dev.CardName = c.name
		}
		devices = append(devices, dev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ALSA devices: %w", err)
	}
	return devices, nil
}

type cardInfo struct {
	id   string
	name string
}

// " 1 [Capture        ]: USB-Audio - USB 2.0 Capture"
var cardLine = regexp.MustCompile(`^\s*(\d+)\s+\[([^\]]*)\]:\s*(.*)$`)

func (h *Host) cardNames() map[int]cardInfo {
	cards := make(map[int]cardInfo)
	data, err := os.ReadFile(filepath.Join(h.ProcRoot, "asound", "cards"))
	if err != nil {
		return cards
	}
	for _, line := range strings.Split(string(data), "\n") {
		m := cardLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		name := m[3]
		if _, after, ok := strings.Cut(name, " - "); ok {
			name = after
		}
		cards[num] = cardInfo{id: strings.TrimSpace(m[2]), name: strings.TrimSpace(name)}
	}
	return cards
}

func (h *Host) log() *slog.Logger {
	if h.logger == nil {
		return slog.Default()
	}
	return h.logger
}

func sortVideo(devices []VideoDevice) {
	slices.SortFunc(devices, func(a, b VideoDevice) int {
		if na, nb := nodeNumber(a.Path), nodeNumber(b.Path); na != nb {
			return na - nb
		}
		return strings.Compare(a.Path, b.Path)
	})
}

func nodeNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "video"))
	if err != nil {
		return -1
	}
	return n
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readSysfsInt reads an integer value from a sysfs file.
func readSysfsInt(path string) int {
	val, _ := strconv.Atoi(readTrimmed(path))
	return val
}
