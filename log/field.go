package log

import (
	"fmt"
	"sort"
	"strings"
)

// Fields 附加在日志前面的上下文，非线程安全
type Fields map[string]any

const prefixKey = "__prefix__"

// String 前缀在最前，其余按key排序，保证同样的Fields输出一致
func (f Fields) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		if k != prefixKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	str := make([]string, 0, len(f))
	if p := f.Prefix(); p != "" {
		str = append(str, fmt.Sprintf("[%s]", p))
	}
	for _, k := range keys {
		str = append(str, fmt.Sprintf("%s=%+v", k, f[k]))
	}
	return strings.Join(str, " ")
}

func (f Fields) prepend(format string) string {
	return f.String() + "," + format
}

func (f Fields) WithPrefix(prefix string) Fields {
	return MergeFields(f, Fields{prefixKey: prefix})
}

// MergeFields 合并生成新的Fields，不修改f
func MergeFields(f Fields, fields ...Fields) Fields {
	all := make(Fields, len(f))
	for k, v := range f {
		all[k] = v
	}
	for _, field := range fields {
		for k, v := range field {
			all[k] = v
		}
	}
	return all
}

func (f Fields) WithFields(fields ...Fields) Fields {
	return MergeFields(f, fields...)
}

func (f Fields) Prefix() string {
	if prefix, ok := f[prefixKey].(string); ok {
		return prefix
	}
	return ""
}

func (f Fields) Debug(format string, a ...any) {
	Debug(f.prepend(format), a...)
}

func (f Fields) Info(format string, a ...any) {
	Info(f.prepend(format), a...)
}

func (f Fields) Warn(format string, a ...any) {
	Warn(f.prepend(format), a...)
}

func (f Fields) Error(format string, a ...any) {
	Error(f.prepend(format), a...)
}
