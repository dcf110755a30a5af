package model

// DeviceRecord 控制面的设备记录，由枚举产生，被控制操作消费
type DeviceRecord struct {
	DisplayName string
	DeviceID    string // e.g. 1-1.2 (sysfs bus id)
	VendorID    string
	ProductID   string
	Kind        string // "audio", "video", "hid", "storage", "BADUSB_SUSPECT", "other"
}

// DeviceFilter 设备管理设施的查询表达式，字段为正则，空字段不参与匹配
type DeviceFilter struct {
	Subsystem string
	DevType   string
	Name      string // 对 DisplayName 做子串匹配 (不区分大小写)
}

// USBDevices 默认过滤器：所有 USB 物理设备
var USBDevices = DeviceFilter{Subsystem: "usb", DevType: "usb_device"}

// DeviceAction 对设备执行的动作
type DeviceAction string

const (
	ActionEnable  DeviceAction = "Enable"
	ActionDisable DeviceAction = "Disable"
)

// ActionFor enable=true -> Enable
func ActionFor(enable bool) DeviceAction {
	if enable {
		return ActionEnable
	}
	return ActionDisable
}
