package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type (
	Level   string
	OutType int
)

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"

	infoFileOutName  = "service"
	errorFileOutName = "error"
	trackFileOutName = "track"

	// ConsoleOut 控制台输出，写到stderr，stdout留给调试打印
	ConsoleOut OutType = 1
	// InfoFileOut 一般日志
	InfoFileOut OutType = 2
	// ErrorFileOut 错误日志
	ErrorFileOut OutType = 4
	// TrackFileOut json日志
	TrackFileOut OutType = 8

	NormalOut          = InfoFileOut | ErrorFileOut
	NormalOutWithTrack = NormalOut | TrackFileOut
)

var (
	// Builder 默认的builder，配置项较多所以用链式调用
	Builder = NewBuilder()

	levelMapping = map[Level]zapcore.Level{
		LevelDebug: zap.DebugLevel,
		LevelInfo:  zap.InfoLevel,
		LevelWarn:  zap.WarnLevel,
		LevelError: zap.ErrorLevel,
	}
	aliasMap = map[string]OutType{
		"console": ConsoleOut,
		"file":    NormalOut,
		"track":   TrackFileOut,
	}

	current atomic.Value // *loggerProxy

	// debug开关切换的callback
	debugLock sync.RWMutex
	cbs       = make(map[reflect.Value]func(bool))
)

// OutTypeAlias 文本形式的输出配置，用|分割，如 "console|file"
func OutTypeAlias(name string) OutType {
	var r OutType
	for _, s := range strings.Split(strings.ToLower(name), "|") {
		r |= aliasMap[strings.TrimSpace(s)]
	}
	return lo.Ternary(r == 0, ConsoleOut, r)
}

// ParseLevel 校验文本形式的日志级别
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelMapping[level]; !ok {
		return "", fmt.Errorf("unknown log level:%q", s)
	}
	return level, nil
}

type config struct {
	name         string
	path         string
	level        Level
	out          OutType
	maxSize      int //单位Mb
	maxAge       int //单位天
	maxBackUps   int
	enableRotate bool
	console      io.Writer
}

type loggerProxy struct {
	zapLevel zap.AtomicLevel
	debug    *atomic.Bool
	logger   atomic.Value // *zap.SugaredLogger
	dLogger  *zap.SugaredLogger
	nLogger  *zap.SugaredLogger
	tracker  *zap.Logger
	// Build打开的日志文件，被替换时关闭
	closers []io.Closer
}

func load() *loggerProxy {
	return current.Load().(*loggerProxy)
}

func (lp *loggerProxy) sugar() *zap.SugaredLogger {
	return lp.logger.Load().(*zap.SugaredLogger)
}

func (lp *loggerProxy) changeLevel(level Level) {
	debug := level == LevelDebug
	lp.zapLevel.SetLevel(levelMapping[level])
	lp.debug.Store(debug)
	lp.logger.Store(lo.Ternary(debug, lp.dLogger, lp.nLogger))
	debugLock.RLock()
	for _, cb := range cbs {
		cb(debug)
	}
	debugLock.RUnlock()
}

// RegisterDebugSwitchCallback 注册debug开关切换的回调，注册时会立即回调一次当前状态
func RegisterDebugSwitchCallback(cb func(debug bool)) {
	debugLock.Lock()
	cbs[reflect.ValueOf(cb)] = cb
	debugLock.Unlock()
	cb(IsDebugEnabled())
}

// UnRegisterDebugSwitchCallback 移除回调，并将cb重置为非debug状态
func UnRegisterDebugSwitchCallback(cb func(debug bool)) {
	cb(false)
	debugLock.Lock()
	delete(cbs, reflect.ValueOf(cb))
	debugLock.Unlock()
}

// ChangeLogLevel 运行时切换日志级别
func ChangeLogLevel(level Level) {
	lp := load()
	if levelMapping[level] == lp.zapLevel.Level() {
		return
	}
	lp.changeLevel(level)
}

// IsDebugEnabled 是否打开了debug
func IsDebugEnabled() bool {
	return load().debug.Load()
}

type builder struct {
	conf config
}

func NewBuilder() *builder {
	return &builder{}
}

func (b *builder) Name(name string) *builder {
	b.conf.name = name
	return b
}

// Path 日志文件目录
func (b *builder) Path(path string) *builder {
	b.conf.path = path
	return b
}

func (b *builder) Level(level Level) *builder {
	b.conf.level = level
	return b
}

func (b *builder) OutType(out OutType) *builder {
	if out <= 0 {
		out = NormalOutWithTrack
	}
	b.conf.out = out
	return b
}

func (b *builder) MaxSize(size int) *builder {
	b.conf.maxSize = size
	return b
}

func (b *builder) MaxAge(age int) *builder {
	b.conf.maxAge = age
	return b
}

func (b *builder) MaxBackUps(count int) *builder {
	b.conf.maxBackUps = count
	return b
}

func (b *builder) EnableRotate(enable bool) *builder {
	b.conf.enableRotate = enable
	return b
}

// ConsoleWriter 控制台输出的目标，默认stderr
func (b *builder) ConsoleWriter(w io.Writer) *builder {
	b.conf.console = w
	return b
}

func trackEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	// 按ECS规定的格式
	encoderCfg.TimeKey = "@timestamp"
	encoderCfg.LevelKey = "log.level"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = timeEncoder
	return encoderCfg
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000Z"))
}

func fileName(name, suffix string) string {
	if name == "" {
		return suffix + ".log"
	}
	return name + "-" + suffix + ".log"
}

func (b *builder) writer(lp *loggerProxy, name string) io.Writer {
	fullName := filepath.Join(b.conf.path, name)
	var w io.WriteCloser
	if b.conf.enableRotate {
		w = &lumberjack.Logger{
			Filename:   fullName,
			MaxSize:    b.conf.maxSize,
			MaxAge:     b.conf.maxAge,
			MaxBackups: b.conf.maxBackUps,
		}
	} else {
		f, err := os.OpenFile(fullName, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
		if err != nil {
			lp.close()
			panic("fail to open log file:" + err.Error())
		}
		w = f
	}
	lp.closers = append(lp.closers, w)
	return w
}

// Build 根据配置生成logger并替换当前的全局logger
func (b *builder) Build() {
	c := b.conf
	if c.out == 0 {
		c.out = NormalOut
	}
	if c.level == "" {
		c.level = LevelDebug
	}
	if c.console == nil {
		c.console = os.Stderr
	}
	b.conf = c
	if c.out&NormalOutWithTrack > 0 {
		if b.conf.path == "" {
			b.conf.path = "./log"
		}
		if err := os.MkdirAll(b.conf.path, 0755); err != nil {
			panic("fail to create log directory:" + err.Error())
		}
	}

	lp := &loggerProxy{
		zapLevel: zap.NewAtomicLevelAt(levelMapping[c.level]),
		debug:    atomic.NewBool(false),
	}
	// 高优先级
	hp := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.WarnLevel
	})
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := make([]zapcore.Core, 0, 3)
	if c.out&ConsoleOut > 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(c.console), lp.zapLevel))
	}
	if c.out&InfoFileOut > 0 {
		name := lo.Ternary(c.name == "", infoFileOutName, c.name) + ".log"
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(b.writer(lp, name)), lp.zapLevel))
	}
	if c.out&ErrorFileOut > 0 {
		cores = append(cores, zapcore.NewCore(encoder,
			zapcore.AddSync(b.writer(lp, fileName(c.name, errorFileOutName))), hp))
	}
	// 没有track文件时输出到控制台，防止调用track函数时panic
	// track日志不受级别控制
	trackOut := c.console
	if c.out&TrackFileOut > 0 {
		trackOut = b.writer(lp, fileName(c.name, trackFileOutName))
	}
	lp.tracker = zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(trackEncoderConfig()),
		zapcore.AddSync(trackOut), zap.DebugLevel))

	install(lp, zap.New(zapcore.NewTee(cores...)), c.level)
}

func install(lp *loggerProxy, lg *zap.Logger, level Level) {
	lp.nLogger = lg.Sugar()
	// debug模式下打印caller
	lp.dLogger = lg.WithOptions(zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	lp.logger.Store(lp.nLogger)
	old, _ := current.Load().(*loggerProxy)
	current.Store(lp)
	lp.changeLevel(level)
	if old != nil {
		old.close()
	}
}

func (lp *loggerProxy) sync() {
	if lp.nLogger != nil {
		_ = lp.nLogger.Sync()
	}
	if lp.tracker != nil {
		_ = lp.tracker.Sync()
	}
}

// close 刷新后关闭自己打开的文件，不会关闭console
func (lp *loggerProxy) close() {
	lp.sync()
	for _, c := range lp.closers {
		_ = c.Close()
	}
	lp.closers = nil
}

func Debug(format string, a ...any) {
	load().sugar().Debugf(format, a...)
}

func Info(format string, a ...any) {
	load().sugar().Infof(format, a...)
}

func Warn(format string, a ...any) {
	load().sugar().Warnf(format, a...)
}

func Error(format string, a ...any) {
	load().sugar().Errorf(format, a...)
}

func Fatal(format string, a ...any) {
	load().sugar().Fatalf(format, a...)
}

// JsonWith 设置默认的field，如模块名称等
func JsonWith(fields ...zap.Field) *zap.Logger {
	return load().tracker.With(fields...)
}

// JsonDebug json格式的debug，track文件未开启时输出到控制台
func JsonDebug(msg string, fields ...zap.Field) {
	load().tracker.Debug(msg, fields...)
}

func JsonInfo(msg string, fields ...zap.Field) {
	load().tracker.Info(msg, fields...)
}

// PanicStack 从panic中恢复并打印日志，recover必须在调用方执行
func PanicStack(prefix string, r any) {
	buf := make([]byte, 1024)
	l := runtime.Stack(buf, false)
	Error("%s: %v-> %s", prefix, r, buf[:l])
}

func Flush() {
	load().sync()
}

func init() {
	// 默认仅输出到控制台，方便测试
	NewBuilder().OutType(ConsoleOut).Level(LevelDebug).Build()
}
