package model

import "time"

// DeviceCategory 被监控活动的分类
type DeviceCategory int

const (
	Microphone DeviceCategory = iota
	Camera
	General
)

// Categories 固定顺序，Microphone / Camera / General
var Categories = []DeviceCategory{Microphone, Camera, General}

func (c DeviceCategory) String() string {
	switch c {
	case Microphone:
		return "Microphone"
	case Camera:
		return "Camera"
	case General:
		return "General"
	}
	return "Unknown"
}

// NoDevice General 类别没有具体设备
const NoDevice = "N/A"

// DefaultCameraName 摄像头探针只打开 index 0
const DefaultCameraName = "Default Camera"

// StatusInUse DeviceStatus map 里唯一的状态值
const StatusInUse = "In Use"

// ProcessInfo 一次轮询产生的进程快照条目
type ProcessInfo struct {
	PID  int32
	Name string
	Exe  string // 可执行文件路径，可能为空 (无权限)
}

// InputDevice 音频子系统枚举出的端点
type InputDevice struct {
	Name          string
	InputChannels int
}

// HasInput 至少一个输入通道才算麦克风
func (d InputDevice) HasInput() bool {
	return d.InputChannels > 0
}

// UsageEvent Worker 产生、消费者只消费一次的事件，创建后不可变
type UsageEvent struct {
	Category    DeviceCategory
	DeviceName  string
	ProcessName string
	PID         int32
}

// DeviceChange USB 热插拔事件
type DeviceChange struct {
	Action    string // "add", "remove"
	DeviceID  string // e.g. 1-1.2
	TimeStamp time.Time
}
