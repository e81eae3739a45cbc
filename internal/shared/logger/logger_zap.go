// Package logger содержит общий логгер для сервера и CLI.
//
// Пакет предоставляет Zap-логгер, настроенный на запись в файл с ротацией
// (lumberjack), и удобный метод для логирования HTTP-запросов.
// Логгер создаётся один раз в main и передаётся компонентам явно.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger представляет обёртку над zap.Logger.
//
// Встраивание *zap.Logger позволяет использовать все методы zap напрямую.
type Logger struct {
	*zap.Logger
}

// Options — параметры логгера.
//
// File — путь к файлу логов; пустая строка отключает запись в файл.
// MaxSizeMB/MaxBackups/MaxAgeDays/Compress — параметры ротации lumberjack.
type Options struct {
	Level       string
	Format      string // json|console
	Development bool
	Stdout      bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
}

// DefaultOptions — файл runtime/logs/http.log, ротация 100MB x 10 на 30 дней.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		Format:     "console",
		File:       filepath.Join("runtime", "logs", "http.log"),
		MaxSizeMB:  100, // MB ≈ ~300 000 строк
		MaxBackups: 10,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// New создаёт zap-логгер по опциям.
//
// Формат времени: "HH:MM:SS DD.MM.YYYY".
func New(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	if opts.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = customTimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sinks []zapcore.WriteSyncer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		// lumberjack отвечает за ротацию файлов
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}))
	}
	if opts.Stdout || len(sinks) == 0 {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	zopts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zopts = append(zopts, zap.Development())
	}

	return &Logger{Logger: zap.New(core, zopts...)}, nil
}

// NewNop — логгер, который ничего не пишет (для тестов).
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named возвращает дочерний логгер с именем компонента.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// RequestLog — поля строки лога об HTTP-запросе.
type RequestLog struct {
	RequestID  string
	Method     string
	URI        string
	Route      string // шаблон маршрута chi, например /api/users/{id}
	RemoteAddr string
	Status     int
	Size       int
	DurationMs float64
}

// LogRequest записывает структурированный лог об HTTP-запросе.
// Уровень зависит от статуса: 5xx — error, 4xx — warn, остальное — info.
func (l *Logger) LogRequest(e RequestLog) {
	fields := []zap.Field{
		zap.String("request_id", e.RequestID),
		zap.String("method", e.Method),
		zap.String("uri", e.URI),
		zap.Int("status", e.Status),
		zap.Int("response_size", e.Size),
		zap.Float64("duration_ms", e.DurationMs),
	}
	if e.Route != "" {
		fields = append(fields, zap.String("route", e.Route))
	}
	if e.RemoteAddr != "" {
		fields = append(fields, zap.String("remote_addr", e.RemoteAddr))
	}

	switch {
	case e.Status >= 500:
		l.Error("HTTP request", fields...)
	case e.Status >= 400:
		l.Warn("HTTP request", fields...)
	default:
		l.Info("HTTP request", fields...)
	}
}

// customTimeEncoder форматирует время для логов в виде "HH:MM:SS DD.MM.YYYY".
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05 02.01.2006"))
}
