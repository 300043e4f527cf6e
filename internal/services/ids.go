package services

import "github.com/google/uuid"

// IDGenerator выдает уникальные идентификаторы для пакетов и файлов.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator выдает UUID v4.
type UUIDGenerator struct{}

// NewID реализует IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
