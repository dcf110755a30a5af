package control

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Platform 设备管理设施
type Platform interface {
	Query(ctx context.Context, filter model.DeviceFilter) ([]model.DeviceRecord, error)
	Invoke(ctx context.Context, deviceID string, action model.DeviceAction) error
}

// PrivilegeChecker 外部提权检查
type PrivilegeChecker interface {
	Elevated() bool
}

// PrivilegeFunc 让普通函数满足 PrivilegeChecker
type PrivilegeFunc func() bool

func (f PrivilegeFunc) Elevated() bool { return f() }

// Recorder 持久化控制日志
type Recorder interface {
	Record(ctx context.Context, level zapcore.Level, msg string) error
}

type Options struct {
	Platform  Platform
	Privilege PrivilegeChecker
	Recorder  Recorder // 可为 nil
	Logger    *zap.Logger
}

// Service 设备枚举/控制，查找表在每次 Enumerate 时整体替换
type Service struct {
	platform  Platform
	privilege PrivilegeChecker
	recorder  Recorder
	log       *zap.Logger

	mu      sync.RWMutex
	devices []model.DeviceRecord
	byName  map[string]string
	byID    map[string]model.DeviceRecord
}

func New(opts Options) (*Service, error) {
	if opts.Platform == nil {
		return nil, errors.New("control: platform is required")
	}
	if opts.Privilege == nil {
		return nil, errors.New("control: privilege checker is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		platform:  opts.Platform,
		privilege: opts.Privilege,
		recorder:  opts.Recorder,
		log:       log,
		devices:   []model.DeviceRecord{},
		byName:    make(map[string]string),
		byID:      make(map[string]model.DeviceRecord),
	}, nil
}

// Enumerate 查询设备并刷新查找表，无匹配设备时返回空切片
func (s *Service) Enumerate(ctx context.Context, filter model.DeviceFilter) ([]model.DeviceRecord, error) {
	found, err := s.platform.Query(ctx, filter)
	if err != nil {
		s.log.Error("Error listing devices", zap.Error(err))
		return []model.DeviceRecord{}, &PlatformError{Op: "query", Err: err}
	}

	devices := make([]model.DeviceRecord, 0, len(found))
	byName := make(map[string]string, len(found))
	byID := make(map[string]model.DeviceRecord, len(found))
	for _, d := range found {
		if filter.Name != "" && !strings.Contains(strings.ToLower(d.DisplayName), strings.ToLower(filter.Name)) {
			continue
		}
		devices = append(devices, d)
		// 重名时后出现的覆盖先出现的
		byName[d.DisplayName] = d.DeviceID
		byID[d.DeviceID] = d
	}

	s.mu.Lock()
	s.devices = devices
	s.byName = byName
	s.byID = byID
	s.mu.Unlock()

	s.log.Debug("devices enumerated", zap.Int("count", len(devices)))
	return slices.Clone(devices), nil
}

// Devices 上一次枚举的结果
func (s *Service) Devices() []model.DeviceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.devices)
}

// Resolve 显示名 -> device_id
func (s *Service) Resolve(displayName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[displayName]
	return id, ok
}

// Toggle 启用/禁用设备，顺序：提权检查 -> 查找表 -> 设备管理设施
func (s *Service) Toggle(ctx context.Context, deviceID string, enable bool) error {
	action := model.ActionFor(enable)
	verb := pastTense(action)
	log := s.log.With(zap.String("device_id", deviceID), zap.String("action", string(action)))

	if !s.privilege.Elevated() {
		log.Warn("toggle rejected", zap.String("kind", "PermissionDenied"))
		s.record(ctx, zapcore.ErrorLevel, "This operation requires administrator privileges.")
		return ErrPermissionDenied
	}

	s.mu.RLock()
	_, known := s.byID[deviceID]
	s.mu.RUnlock()
	if !known {
		log.Warn("toggle rejected", zap.String("kind", "DeviceNotFound"))
		s.record(ctx, zapcore.ErrorLevel, fmt.Sprintf("Invalid device selected: %s", deviceID))
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}

	s.record(ctx, zapcore.InfoLevel, fmt.Sprintf("Attempting to %s device: %s", strings.ToLower(string(action)), deviceID))
	if err := s.platform.Invoke(ctx, deviceID, action); err != nil {
		log.Error("toggle failed", zap.String("kind", "PlatformFailure"), zap.Error(err))
		s.record(ctx, zapcore.ErrorLevel, fmt.Sprintf("Failed to %s device: %s. Error: %v", strings.ToLower(string(action)), deviceID, err))
		return actionError(action, deviceID, err)
	}

	log.Info("✅ Device toggled")
	s.record(ctx, zapcore.InfoLevel, fmt.Sprintf("Successfully %s device: %s", verb, deviceID))
	return nil
}

// ToggleByName 先按显示名解析，失败再把参数当作 device_id
func (s *Service) ToggleByName(ctx context.Context, nameOrID string, enable bool) error {
	id, ok := s.Resolve(nameOrID)
	if !ok {
		id = nameOrID
	}
	return s.Toggle(ctx, id, enable)
}

func (s *Service) record(ctx context.Context, level zapcore.Level, msg string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, level, msg); err != nil {
		s.log.Error("failed to persist control log", zap.Error(err))
	}
}

func pastTense(a model.DeviceAction) string {
	if a == model.ActionEnable {
		return "enabled"
	}
	return "disabled"
}
