// Package logger собирает zap- и zerolog-логгеры из общей конфигурации.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки для логгера.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console
	OutputPath string // Путь к файлу лога; пусто - stdout
}

func (c Config) levelName() string {
	l := strings.ToLower(strings.TrimSpace(c.Level))
	if l == "" {
		return "info"
	}
	return l
}

func (c Config) encoding() string {
	e := strings.ToLower(strings.TrimSpace(c.Encoding))
	if e != "console" && e != "json" {
		return "json"
	}
	return e
}

func (c Config) zapLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(c.levelName())); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", c.Level, err)
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

// New создает новый экземпляр zap.Logger на основе конфигурации.
// Каталог файла лога создается при необходимости.
func New(cfg Config) (*zap.Logger, error) {
	out, _, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	return newZap(cfg, out), nil
}

// NewPair создает zap- и zerolog-логгеры, пишущие в один вывод.
// close закрывает файл лога; для stdout/stderr ничего не делает.
func NewPair(cfg Config) (*zap.Logger, zerolog.Logger, func() error, error) {
	out, closeFn, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	return newZap(cfg, out), NewZerolog(cfg, out), closeFn, nil
}

func newZap(cfg Config, out zapcore.WriteSyncer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.encoding() == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, out, cfg.zapLevel())
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))
}

func openOutput(path string) (zapcore.WriteSyncer, func() error, error) {
	noop := func() error { return nil }
	switch strings.TrimSpace(path) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), noop, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.Lock(f), f.Close, nil
}

// NewZerolog создает zerolog.Logger для клиента модели с тем же уровнем.
// w == nil означает stdout.
func NewZerolog(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if cfg.encoding() == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: cfg.OutputPath != ""}
	}
	level, err := zerolog.ParseLevel(cfg.levelName())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
