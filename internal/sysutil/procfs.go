package sysutil

import (
	"bufio"
	"os"
	"strings"
)

// ScanLines 逐行读取 procfs/sysfs 文本文件，fn 返回 false 时提前结束
func ScanLines(path string, fn func(line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if !fn(scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}

// ReadAttr 读取单值属性文件，失败返回 "unknown"
func ReadAttr(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(b))
}
