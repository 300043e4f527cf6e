package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/go-chi/chi/v5"
)

const (
	multipartFileField = "file"
	// multipartOverhead - запас на заголовки частей multipart поверх размера файла.
	multipartOverhead = 64 << 10
)

//nolint:gochecknoglobals // Логгер пакета.
var fileLog = logger.Component("FileHandler")

// errNoFilePart возвращается, если в multipart-форме нет части "file".
var errNoFilePart = errors.New("в форме нет части file")

// FileHandler принимает и отдает PDF-файлы.
type FileHandler struct {
	service services.FileService
}

// NewFileHandler создает файловый обработчик.
func NewFileHandler(s services.FileService) *FileHandler {
	return &FileHandler{service: s}
}

// UploadPDF принимает файл как сырое тело запроса или как часть "file" multipart-формы.
func (h *FileHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	limit := h.service.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	content, err := readUpload(r, limit)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, services.ErrFileTooLarge):
			http.Error(w, "Файл слишком большой", http.StatusRequestEntityTooLarge)
		case errors.Is(err, errNoFilePart):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			fileLog.Warnf("Ошибка чтения загружаемого файла: %v", err)
			http.Error(w, "Ошибка чтения тела запроса", http.StatusBadRequest)
		}
		return
	}

	res, err := h.service.Upload(r.Context(), content)
	if err != nil {
		writeServiceError(w, fileLog, err)
		return
	}

	writeJSON(w, fileLog, http.StatusOK, models.FileUploadResponse{
		Message: "File uploaded successfully",
		URL:     res.URL,
	})
}

// readUpload читает не больше limit+1 байт файла, чтобы сервис мог отклонить превышение.
func readUpload(r *http.Request, limit int64) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return readLimited(r.Body, limit)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFilePart
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != multipartFileField {
			_ = part.Close()
			continue
		}
		defer part.Close()
		return readLimited(part, limit)
	}
}

func readLimited(src io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, services.ErrFileTooLarge
	}
	return data, nil
}

// ServeFile отдает сохраненный PDF по имени.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.service.Open(r.Context(), name)
	if err != nil {
		writeServiceError(w, fileLog, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", services.FileContentType)
	if _, err = io.Copy(w, rc); err != nil {
		fileLog.Errorf("Ошибка отправки файла %s: %v", name, err)
	}
}
