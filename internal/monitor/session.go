package monitor

import (
	"sort"
	"sync"

	"github.com/Hara602/devSentry/internal/model"
)

// Session 去重集合 + 设备状态表，单调增长，整个进程生命周期内有效
type Session struct {
	mu      sync.Mutex
	seen    map[model.DeviceCategory]map[string]struct{}
	devices map[model.DeviceCategory]map[string]string
}

func NewSession() *Session {
	s := &Session{
		seen:    make(map[model.DeviceCategory]map[string]struct{}),
		devices: make(map[model.DeviceCategory]map[string]string),
	}
	for _, c := range model.Categories {
		s.seen[c] = make(map[string]struct{})
		s.devices[c] = make(map[string]string)
	}
	return s
}

// Claim 进程名第一次出现时加入集合并返回 true
func (s *Session) Claim(cat model.DeviceCategory, procName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.seen[cat]
	if set == nil {
		set = make(map[string]struct{})
		s.seen[cat] = set
	}
	if _, ok := set[procName]; ok {
		return false
	}
	set[procName] = struct{}{}
	return true
}

// MarkDevice 新设备名记为 "In Use"，已存在返回 false
func (s *Session) MarkDevice(cat model.DeviceCategory, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.devices[cat]
	if m == nil {
		m = make(map[string]string)
		s.devices[cat] = m
	}
	if _, ok := m[name]; ok {
		return false
	}
	m[name] = model.StatusInUse
	return true
}

// Seen 返回已上报进程名的有序副本
func (s *Session) Seen(cat model.DeviceCategory) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.seen[cat]))
	for name := range s.seen[cat] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Devices 返回设备状态表副本
func (s *Session) Devices(cat model.DeviceCategory) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.devices[cat]))
	for k, v := range s.devices[cat] {
		out[k] = v
	}
	return out
}
