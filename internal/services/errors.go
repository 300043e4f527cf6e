package services

import "errors"

// Ошибки сервисного слоя. Обработчики сопоставляют их с HTTP-статусами.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrInvalidPayload     = errors.New("некорректные данные запроса")
	ErrFileNotFound       = errors.New("файл не найден")
	ErrFileTooLarge       = errors.New("файл превышает допустимый размер")
	ErrBatchNotFound      = errors.New("пакет не найден")
	ErrStorage            = errors.New("внутренняя ошибка хранилища")
	ErrJWTDisabled        = errors.New("выдача токенов отключена: не задан секрет JWT")
)
