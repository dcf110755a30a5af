package analysis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Hara602/devSentry/internal/sysutil"
)

// USB 设备类型
const (
	KindAudio   = "audio"
	KindVideo   = "video"
	KindHID     = "hid"
	KindStorage = "storage"
	KindBadUSB  = "BADUSB_SUSPECT"
	KindOther   = "other"
)

// bInterfaceClass
const (
	classAudio   = "01"
	classHID     = "03"
	classStorage = "08"
	classVideo   = "0e"
)

// ClassifyUSB 根据 USB 设备树下各接口的 bInterfaceClass 判定设备类型
// 同时拥有 08(存储) 和 03(HID) 接口则判定为 BadUSB
func ClassifyUSB(sysPath string) (kind string, suspicious bool) {
	files, err := os.ReadDir(sysPath)
	if err != nil {
		return KindOther, false
	}
	classes := make(map[string]bool)
	for _, f := range files {
		// 接口目录，例如 1-1:1.0
		if !f.IsDir() || !strings.Contains(f.Name(), ":") {
			continue
		}
		code := strings.ToLower(sysutil.ReadAttr(filepath.Join(sysPath, f.Name(), "bInterfaceClass")))
		classes[code] = true
	}

	switch {
	case classes[classStorage] && classes[classHID]:
		return KindBadUSB, true
	case classes[classVideo]:
		return KindVideo, false
	case classes[classAudio]:
		return KindAudio, false
	case classes[classHID]:
		return KindHID, false
	case classes[classStorage]:
		return KindStorage, false
	}
	return KindOther, false
}
