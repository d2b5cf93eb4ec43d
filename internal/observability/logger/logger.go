package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init inicializa el singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		mu.Lock()
		instance = build(cfg)
		mu.Unlock()
	})
}

// L retorna el singleton; sin Init usa dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Replace cambia el singleton (tests, CLI con --quiet). Retorna una función que restaura el anterior.
func Replace(l *zap.Logger) (restore func()) {
	once.Do(func() {})
	mu.Lock()
	prev := instance
	instance = l
	mu.Unlock()
	return func() {
		mu.Lock()
		instance = prev
		mu.Unlock()
	}
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// With retorna un logger con campos persistentes.
func With(fields ...zap.Field) *zap.Logger { return L().With(fields...) }

// S retorna el SugaredLogger del singleton (printf-style).
func S() *zap.SugaredLogger { return L().Sugar() }

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
