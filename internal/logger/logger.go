// Package logger содержит общий для сервиса логгер на базе logrus.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Форматы вывода логов.
const (
	FormatText = "text"
	FormatJSON = "json"
)

//nolint:gochecknoglobals // Один логгер на процесс, как и стандартный log.
var logg = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Get возвращает общий логгер.
func Get() *logrus.Logger {
	return logg
}

// Setup настраивает уровень и формат логирования.
// Пустые значения оставляют текущие настройки.
func Setup(level, format string) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("неизвестный уровень логирования '%s': %w", level, err)
		}
		logg.SetLevel(lvl)
	}

	switch strings.ToLower(format) {
	case "":
	case FormatText:
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logg.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("неизвестный формат логирования '%s'", format)
	}
	return nil
}

// SetOutput перенаправляет вывод логгера (используется в тестах).
func SetOutput(w io.Writer) {
	logg.SetOutput(w)
}

// Component возвращает запись логгера с полем component.
// Заменяет префиксы вида "[Repo]" в сообщениях.
func Component(name string) *logrus.Entry {
	return logg.WithField("component", name)
}
