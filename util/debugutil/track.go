package debugutil

import (
	"strings"

	"go.uber.org/zap"

	"github.com/YiuTerran/go-common/debugprint/log"
)

/**
  *  @author tryao
  *  @date 2026/10/17 11:40
**/

// LogHorizontal 以debug级别写日志，非debug模式下不做格式化
func LogHorizontal[T any](prefix string, v []T) {
	if !log.IsDebugEnabled() {
		return
	}
	log.Debug("%s%s", prefix, Horizontal(v))
}

// LogVertical 前缀单独一行，之后每个元素一行
func LogVertical[T any](prefix string, v []T) {
	if !log.IsDebugEnabled() {
		return
	}
	if len(v) == 0 {
		log.Debug("%s", prefix)
		return
	}
	log.Debug("%s\n%s", prefix, strings.TrimSuffix(Vertical(v), "\n"))
}

// TrackHorizontal 写json格式的track日志
func TrackHorizontal[T any](msg string, v []T) {
	if !log.IsDebugEnabled() {
		return
	}
	log.JsonDebug(msg,
		zap.Int("len", len(v)),
		zap.Strings("elems", texts(v)),
		zap.String("listing", Horizontal(v)))
}
