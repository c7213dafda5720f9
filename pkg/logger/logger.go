package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	levelNames = map[Level]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
	}
	levelColors = map[Level]string{
		DEBUG: "\033[36m",
		INFO:  "\033[32m",
		WARN:  "\033[33m",
		ERROR: "\033[31m",
	}
	reset = "\033[0m"
)

// sink 所有日志器共享的输出目标和级别
type sink struct {
	mu       sync.Mutex
	level    Level
	out      *log.Logger
	file     *os.File
	useColor bool
}

// Logger 带级别和可选前缀的日志器，WithPrefix 派生的日志器共享同一个 sink
type Logger struct {
	sink   *sink
	prefix string
}

var std = &Logger{sink: &sink{
	level:    INFO,
	out:      log.New(os.Stderr, "", log.Ldate|log.Ltime),
	useColor: true,
}}

// Init 设置全局级别和颜色，输出到 stderr；可以重复调用
func Init(level string, useColor bool) {
	s := std.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeFile()
	s.level = parseLevel(level)
	s.out.SetOutput(os.Stderr)
	s.useColor = useColor
}

// InitWithFile 日志写入文件，文件打不开时退回 stderr
func InitWithFile(level string, useColor bool, logFile string) {
	if logFile == "" {
		Init(level, useColor)
		return
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Init(level, useColor)
		Warn("无法打开日志文件 %s: %v", logFile, err)
		return
	}

	s := std.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeFile()
	s.level = parseLevel(level)
	s.out.SetOutput(file)
	s.file = file
	s.useColor = false
}

func Get() *Logger { return std }

func SetLevel(level string) {
	s := std.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = parseLevel(level)
}

// SetOutput 替换输出目标，测试中用来收集日志
func SetOutput(w io.Writer) {
	s := std.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeFile()
	s.out.SetOutput(w)
	s.useColor = false
}

func (s *sink) closeFile() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}

func parseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func Debug(format string, v ...interface{}) { std.log(DEBUG, format, v...) }

func Info(format string, v ...interface{}) { std.log(INFO, format, v...) }

func Warn(format string, v ...interface{}) { std.log(WARN, format, v...) }

func Error(format string, v ...interface{}) { std.log(ERROR, format, v...) }

func Fatal(format string, v ...interface{}) {
	std.log(ERROR, format, v...)
	os.Exit(1)
}

func (l *Logger) Debug(format string, v ...interface{}) { l.log(DEBUG, format, v...) }

func (l *Logger) Info(format string, v ...interface{}) { l.log(INFO, format, v...) }

func (l *Logger) Warn(format string, v ...interface{}) { l.log(WARN, format, v...) }

func (l *Logger) Error(format string, v ...interface{}) { l.log(ERROR, format, v...) }

func (l *Logger) log(level Level, format string, v ...interface{}) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < s.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	levelStr := levelNames[level]

	var output string
	if s.useColor {
		output = fmt.Sprintf("%s[%s]%s %s", levelColors[level], levelStr, reset, msg)
	} else {
		output = fmt.Sprintf("[%s] %s", levelStr, msg)
	}

	if l.prefix != "" {
		output = fmt.Sprintf("[%s] %s", l.prefix, output)
	}

	s.out.Println(output)
}

// WithPrefix 派生带模块前缀的日志器，例如 [store]、[refresh]
func WithPrefix(prefix string) *Logger {
	return &Logger{sink: std.sink, prefix: prefix}
}
