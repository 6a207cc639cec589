package debugutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

/**
  *  @author tryao
  *  @date 2026/10/17 10:12
**/

// ErrCountOutOfRange PrintArrayHorizontal的n超过了切片长度
var ErrCountOutOfRange = errors.New("count exceeds buffer length")

// 每次调用时取os.Stdout，测试中可替换
var stdout = func() io.Writer {
	return os.Stdout
}

func write(s string) {
	if s == "" {
		return
	}
	_, _ = io.WriteString(stdout(), s)
}

func texts[T any](v []T) []string {
	return lo.Map(v, func(e T, _ int) string {
		return fmt.Sprint(e)
	})
}

// Horizontal 单行输出，形如 "[ 1 2 3 ]"，空切片为 "[ ]"
func Horizontal[T any](v []T) string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, s := range texts(v) {
		sb.WriteString(s)
		sb.WriteByte(' ')
	}
	sb.WriteByte(']')
	return sb.String()
}

// Vertical 每个元素一行，空切片返回空字符串
func Vertical[T any](v []T) string {
	var sb strings.Builder
	for _, s := range texts(v) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintArrayHorizontal 打印arr的前n个元素，不换行
// n超过len(arr)时直接panic，不会有任何输出
func PrintArrayHorizontal[T any](arr []T, n uint) {
	if uint64(n) > uint64(len(arr)) {
		panic(fmt.Errorf("%w: count %d, length %d", ErrCountOutOfRange, n, len(arr)))
	}
	write(Horizontal(arr[:n]))
}

// PrintVectorHorizontal 按顺序打印全部元素，不换行
func PrintVectorHorizontal[T any](v []T) {
	write(Horizontal(v))
}

// PrintVectorVertical 每个元素一行
func PrintVectorVertical[T any](v []T) {
	write(Vertical(v))
}
