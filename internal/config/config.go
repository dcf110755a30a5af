// Package config 汇总 devsentry 的可调参数：默认值 -> JSON 文件 -> DEVSENTRY_* 环境变量
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const envPrefix = "DEVSENTRY_"

// Duration 在 JSON 中以 "2s"、"500ms" 形式出现
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if dur <= 0 {
		return fmt.Errorf("duration %q must be > 0", s)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

type Config struct {
	MicrophoneInterval Duration `json:"microphone_interval"`
	CameraInterval     Duration `json:"camera_interval"`
	GeneralInterval    Duration `json:"general_interval"`
	DrainInterval      Duration `json:"drain_interval"`
	CameraTimeout      Duration `json:"camera_timeout"`
	SnapshotTimeout    Duration `json:"snapshot_timeout"`

	CameraIndex        int    `json:"camera_index"`
	DBPath             string `json:"db_path"`
	ExportDir          string `json:"export_dir"`
	LogLevel           string `json:"log_level"`
	InspectExecutables bool   `json:"inspect_executables"`

	// Warnings 环境变量中被忽略的值，日志初始化后再输出
	Warnings []string `json:"-"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		stateDir = filepath.Join(home, ".local", "state")
	}
	return Config{
		MicrophoneInterval: Duration(2 * time.Second),
		CameraInterval:     Duration(1 * time.Second),
		GeneralInterval:    Duration(5 * time.Second),
		DrainInterval:      Duration(500 * time.Millisecond),
		CameraTimeout:      Duration(750 * time.Millisecond),
		SnapshotTimeout:    Duration(3 * time.Second),
		CameraIndex:        0,
		DBPath:             filepath.Join(stateDir, "devsentry", "devsentry.db"),
		ExportDir:          filepath.Join(home, "Desktop"),
		LogLevel:           "info",
		InspectExecutables: true,
	}
}

// Load 在默认值上叠加可选的 JSON 文件和环境变量
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		// 文件中缺省的字段保留默认值
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.CameraIndex < 0 {
			return Default(), fmt.Errorf("parse config %s: camera_index must be >= 0", path)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	durations := map[string]*Duration{
		"MICROPHONE_INTERVAL": &cfg.MicrophoneInterval,
		"CAMERA_INTERVAL":     &cfg.CameraInterval,
		"GENERAL_INTERVAL":    &cfg.GeneralInterval,
		"DRAIN_INTERVAL":      &cfg.DrainInterval,
		"CAMERA_TIMEOUT":      &cfg.CameraTimeout,
		"SNAPSHOT_TIMEOUT":    &cfg.SnapshotTimeout,
	}
	for key, dst := range durations {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			*dst = Duration(dur)
		} else {
			cfg.warn(key, v)
		}
	}

	strs := map[string]*string{
		"DB_PATH":    &cfg.DBPath,
		"EXPORT_DIR": &cfg.ExportDir,
		"LOG_LEVEL":  &cfg.LogLevel,
	}
	for key, dst := range strs {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(envPrefix + "CAMERA_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CameraIndex = n
		} else {
			cfg.warn("CAMERA_INDEX", v)
		}
	}
	if v := os.Getenv(envPrefix + "INSPECT_EXECUTABLES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InspectExecutables = b
		} else {
			cfg.warn("INSPECT_EXECUTABLES", v)
		}
	}
}

func (c *Config) warn(key, value string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s%s value %q ignored", envPrefix, key, value))
}
