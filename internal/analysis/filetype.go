package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
)

// 风险等级
const (
	RiskSafe   = "SAFE"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Result 检测结果
type Result struct {
	IsMasquerade bool   // 是否是伪装文件
	RealExt      string // 真实的类型后缀 (根据文件头)
	DeclaredExt  string // 声明的后缀 (文件名)
	RiskLevel    string
	Message      string
}

// TypeInspector 文件头与后缀一致性检查
type TypeInspector struct {
	aliasMap map[string]map[string]bool
	mu       sync.RWMutex
}

func NewTypeInspector() *TypeInspector {
	t := &TypeInspector{aliasMap: make(map[string]map[string]bool)}
	t.initRules()
	return t
}

// initRules 合法的“表里不一”
func (t *TypeInspector) initRules() {
	t.Allow("zip", "jar", "war", "apk", "whl", "crx", "docx", "xlsx", "pptx", "odt")
	t.Allow("elf", "so", "bin", "run", "appimage", "ko", "o")
	t.Allow("exe", "dll", "sys", "scr", "cpl", "ocx")
	t.Allow("gz", "gzip", "tgz")
	t.Allow("xz", "txz")
}

// Allow 登记 realType 可以合法使用的后缀
func (t *TypeInspector) Allow(realType string, exts ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	allowed, ok := t.aliasMap[realType]
	if !ok {
		allowed = map[string]bool{realType: true}
		t.aliasMap[realType] = allowed
	}
	for _, ext := range exts {
		allowed[ext] = true
	}
}

// Inspect 读取文件头，判断真实类型是否与后缀相符
func (t *TypeInspector) Inspect(filePath string) (*Result, error) {
	rawExt := filepath.Ext(filePath)
	if rawExt == "" {
		// Linux 可执行文件通常没有后缀
		return &Result{RiskLevel: RiskSafe, Message: "No extension"}, nil
	}
	declaredExt := strings.ToLower(strings.TrimPrefix(rawExt, "."))

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file failed: %w", err)
	}
	defer f.Close()

	// 262 bytes 是 filetype 建议的头部长度
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read header failed: %w", err)
		}
		return &Result{DeclaredExt: declaredExt, RiskLevel: RiskSafe, Message: "Empty file"}, nil
	}

	kind, _ := filetype.Match(head[:n])
	if kind == filetype.Unknown {
		// 脚本等纯文本默认信任
		return &Result{RealExt: "unknown", DeclaredExt: declaredExt, RiskLevel: RiskSafe,
			Message: "Unknown binary signature (likely text)"}, nil
	}

	realExt := kind.Extension
	res := &Result{RealExt: realExt, DeclaredExt: declaredExt, RiskLevel: RiskSafe}
	if realExt == declaredExt {
		return res, nil
	}

	t.mu.RLock()
	allowed := t.aliasMap[realExt][declaredExt]
	t.mu.RUnlock()
	if allowed {
		res.Message = fmt.Sprintf("Allowed alias: %s is compatible with %s", declaredExt, realExt)
		return res, nil
	}

	res.IsMasquerade = true
	res.RiskLevel = RiskMedium
	if realExt == "exe" || realExt == "elf" {
		res.RiskLevel = RiskHigh
	}
	res.Message = fmt.Sprintf("Type Mismatch! Header is '%s' but file is '%s'", realExt, declaredExt)
	return res, nil
}
