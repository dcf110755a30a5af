package sysutil

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()
var LogSugar = Log.Sugar()

// InitLogger level 为空时使用 info，未指定 outputs 时输出到 stderr
func InitLogger(level string, outputs ...string) error {
	lvl := zap.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder        // 格式化时间输出
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // 彩色级别
	// 默认输出到 stderr，stdout 留给 plain 模式的事件行
	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	if len(outputs) > 0 {
		ws, _, err := zap.Open(outputs...)
		if err != nil {
			return fmt.Errorf("open log output: %w", err)
		}
		sink = ws
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config.EncoderConfig),
		sink,
		lvl,
	)
	Log = zap.New(core, zap.AddCaller())
	LogSugar = Log.Sugar()
	return nil
}
