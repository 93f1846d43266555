package devices

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fakeHost(t *testing.T) *Host {
	t.Helper()
	root := t.TempDir()
	return &Host{
		SysRoot:  filepath.Join(root, "sys"),
		ProcRoot: filepath.Join(root, "proc"),
		DevRoot:  filepath.Join(root, "dev"),
	}
}

func TestListVideo_FromSysfs(t *testing.T) {
	h := fakeHost(t)
	class := filepath.Join(h.SysRoot, "class", "video4linux")
	writeFile(t, filepath.Join(class, "video10", "name"), "bcm2835-codec-decode\n")
	writeFile(t, filepath.Join(class, "video2", "name"), "USB2.0 PC CAMERA\n")
	writeFile(t, filepath.Join(class, "video2", "index"), "0\n")
	writeFile(t, filepath.Join(class, "video0", "name"), "AV TO USB2.0\n")
	writeFile(t, filepath.Join(class, "v4l-subdev0", "name"), "subdev\n")

	devices, err := h.ListVideo()
	if err != nil {
		t.Fatalf("ListVideo() error = %v", err)
	}

	want := []struct{ path, name string }{
		{filepath.Join(h.DevRoot, "video0"), "AV TO USB2.0"},
		{filepath.Join(h.DevRoot, "video2"), "USB2.0 PC CAMERA"},
		{filepath.Join(h.DevRoot, "video10"), "bcm2835-codec-decode"},
	}
	if len(devices) != len(want) {
		t.Fatalf("got %d devices, want %d: %+v", len(devices), len(want), devices)
	}
	for i, w := range want {
		if devices[i].Path != w.path || devices[i].Name != w.name {
			t.Errorf("device %d = %s (%s), want %s (%s)", i, devices[i].Path, devices[i].Name, w.path, w.name)
		}
	}
}

func TestListVideo_FallsBackToDevNodes(t *testing.T) {
	h := fakeHost(t)
	writeFile(t, filepath.Join(h.DevRoot, "video1"), "")
	writeFile(t, filepath.Join(h.DevRoot, "video0"), "")
	writeFile(t, filepath.Join(h.DevRoot, "null"), "")

	devices, err := h.ListVideo()
	if err != nil {
		t.Fatalf("ListVideo() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2: %+v", len(devices), devices)
	}
	if devices[0].Name != "video0" || devices[1].Name != "video1" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestListAudio(t *testing.T) {
	h := fakeHost(t)
	writeFile(t, filepath.Join(h.ProcRoot, "asound", "cards"),
		" 0 [PCH            ]: HDA-Intel - HDA Intel PCH\n"+
			"                      HDA Intel PCH at 0xf7f10000 irq 32\n"+
			" 1 [Capture        ]: USB-Audio - AV TO USB2.0\n"+
			"                      MACROSILICON AV TO USB2.0 at usb-0000:00:14.0-2, high speed\n")
	writeFile(t, filepath.Join(h.ProcRoot, "asound", "pcm"),
		"00-00: ALC887-VD Analog : ALC887-VD Analog : playback 1 : capture 1\n"+
			"00-01: ALC887-VD Digital : ALC887-VD Digital : playback 1\n"+
			"01-00: USB Audio : USB Audio : capture 1\n")

	devices, err := h.ListAudio()
	if err != nil {
		t.Fatalf("ListAudio() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2: %+v", len(devices), devices)
	}

	usb := devices[1]
	if usb.ID != "hw:1,0" || usb.Card != 1 || usb.Device != 0 {
		t.Errorf("usb device = %+v", usb)
	}
	if usb.CardID != "Capture" || usb.CardName != "AV TO USB2.0" || usb.Name != "USB Audio" {
		t.Errorf("usb device names = %+v", usb)
	}
	if devices[0].ID != "hw:0,0" || devices[0].CardName != "HDA Intel PCH" {
		t.Errorf("onboard device = %+v", devices[0])
	}
}

func TestListAudio_NoALSA(t *testing.T) {
	devices, err := fakeHost(t).ListAudio()
	if err != nil {
		t.Fatalf("ListAudio() error = %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("devices = %#v, want empty slice", devices)
	}
}

func TestExists(t *testing.T) {
	h := fakeHost(t)
	node := filepath.Join(h.DevRoot, "video0")
	writeFile(t, node, "")

	if !h.Exists(node) {
		t.Errorf("Exists(%s) = false", node)
	}
	if Exists(filepath.Join(h.DevRoot, "video9")) {
		t.Error("Exists reported a missing node")
	}
	if Exists("") {
		t.Error("Exists reported an empty path")
	}
}

func TestSetInput_MissingDevice(t *testing.T) {
	h := fakeHost(t)
	if err := h.SetInput(filepath.Join(h.DevRoot, "video0"), 1); err == nil {
		t.Error("expected error for missing device")
	}
}
