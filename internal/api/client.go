package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/TedXpro/Comparisons-Website/models"
)

const (
	defaultTimeout = 60 * time.Second
	// maxErrorBody ограничивает чтение текста ошибки из ответа сервера.
	maxErrorBody = 4 << 10
)

var (
	// ErrAuthorization сигнализирует об ошибке авторизации (401).
	ErrAuthorization = errors.New("ошибка авторизации")
	// ErrNotFound сигнализирует об отсутствии ресурса (404).
	ErrNotFound = errors.New("не найдено")
	// ErrRateLimited сигнализирует о превышении лимита запросов (429).
	ErrRateLimited = errors.New("превышен лимит запросов")
)

// StatusError - неожиданный статус ответа сервера.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("статус %d", e.StatusCode)
	}
	return fmt.Sprintf("статус %d: %s", e.StatusCode, e.Message)
}

// Client определяет интерфейс для взаимодействия с API сервера сравнений.
type Client interface {
	// Register регистрирует нового пользователя.
	Register(ctx context.Context, username, password string) error
	// Login аутентифицирует пользователя и возвращает JWT токен.
	Login(ctx context.Context, username, password string) (string, error)
	// UploadData загружает JSON-массив записей и возвращает batch_id.
	UploadData(ctx context.Context, records io.Reader) (*models.UploadDataResponse, error)
	// GetData возвращает записи пакета.
	GetData(ctx context.Context, batchID string) (*models.GetDataResponse, error)
	// StoreRule сохраняет текст правила для пакета.
	StoreRule(ctx context.Context, batchID, ruleText string) error
	// GetRules возвращает правила пакета.
	GetRules(ctx context.Context, batchID string) ([]string, error)
	// UploadPDF загружает PDF-файл и возвращает ссылку на него.
	UploadPDF(ctx context.Context, filename string, data io.Reader) (*models.FileUploadResponse, error)
	// DownloadFile скачивает ранее загруженный файл. Тело закрывает вызывающая сторона.
	DownloadFile(ctx context.Context, name string) (io.ReadCloser, error)
	// Export скачивает пакет в виде XLSX. Тело закрывает вызывающая сторона.
	Export(ctx context.Context, batchID string) (io.ReadCloser, error)
	// SetAuthToken устанавливает JWT токен для аутентифицированных запросов.
	SetAuthToken(token string)
	// SetBasicAuth устанавливает учетные данные для Basic-аутентификации.
	SetBasicAuth(username, password string)
}

// httpClient реализует интерфейс Client для взаимодействия с сервером по HTTP.
type httpClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	username   string
	password   string
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetAuthToken устанавливает токен аутентификации для клиента.
func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

// SetBasicAuth реализует Client.
func (c *httpClient) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

// newRequest формирует запрос к эндпоинту. Токен имеет приоритет над Basic-аутентификацией.
func (c *httpClient) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body io.Reader,
) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL %s: %w", path, err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса %s %s: %w", method, path, err)
	}
	switch {
	case c.authToken != "":
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

// do выполняет запрос и возвращает ответ только при ожидаемом статусе.
func (c *httpClient) do(req *http.Request, expected int) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode == expected {
		return resp, nil
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, statusErr)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %w", ErrNotFound, statusErr)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %w", ErrRateLimited, statusErr)
	default:
		return nil, statusErr
	}
}

// doJSON выполняет запрос и декодирует JSON-ответ в out.
func (c *httpClient) doJSON(req *http.Request, expected int, out any) error {
	resp, err := c.do(req, expected)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа %s: %w", req.URL.Path, err)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования тела запроса: %w", err)
	}
	return bytes.NewReader(data), nil
}

func batchQuery(batchID string) url.Values {
	return url.Values{"batch_id": []string{batchID}}
}

// Register отправляет запрос на регистрацию на сервер.
func (c *httpClient) Register(ctx context.Context, username, password string) error {
	body, err := jsonBody(models.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/register", nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err = c.doJSON(req, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("ошибка регистрации: %w", err)
	}
	return nil
}

// Login отправляет запрос на вход и сохраняет токен.
func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	body, err := jsonBody(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/login", nil, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var loginResponse models.LoginResponse
	if err = c.doJSON(req, http.StatusOK, &loginResponse); err != nil {
		return "", fmt.Errorf("ошибка входа: %w", err)
	}
	if loginResponse.Token == "" {
		return "", errors.New("сервер вернул пустой токен")
	}

	c.authToken = loginResponse.Token
	return loginResponse.Token, nil
}

// UploadData реализует Client.
func (c *httpClient) UploadData(ctx context.Context, records io.Reader) (*models.UploadDataResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/upload-data", nil, records)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.UploadDataResponse
	if err = c.doJSON(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("ошибка загрузки данных: %w", err)
	}
	return &out, nil
}

// GetData реализует Client.
func (c *httpClient) GetData(ctx context.Context, batchID string) (*models.GetDataResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/get-data", batchQuery(batchID), nil)
	if err != nil {
		return nil, err
	}

	var out models.GetDataResponse
	if err = c.doJSON(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("ошибка получения пакета %s: %w", batchID, err)
	}
	return &out, nil
}

// StoreRule реализует Client.
func (c *httpClient) StoreRule(ctx context.Context, batchID, ruleText string) error {
	body, err := jsonBody(models.StoreRuleRequest{BatchID: &batchID, Rules: &ruleText})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/rules", nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err = c.doJSON(req, http.StatusOK, nil); err != nil {
		return fmt.Errorf("ошибка сохранения правила: %w", err)
	}
	return nil
}

// GetRules реализует Client.
func (c *httpClient) GetRules(ctx context.Context, batchID string) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/rules", batchQuery(batchID), nil)
	if err != nil {
		return nil, err
	}

	var out models.RulesResponse
	if err = c.doJSON(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("ошибка получения правил пакета %s: %w", batchID, err)
	}
	return out.Rules, nil
}

// UploadPDF отправляет файл частью "file" multipart-формы.
func (c *httpClient) UploadPDF(
	ctx context.Context,
	filename string,
	data io.Reader,
) (*models.FileUploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования multipart-формы: %w", err)
	}
	if _, err = io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка формирования multipart-формы: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload-pdf", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.FileUploadResponse
	if err = c.doJSON(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("ошибка загрузки файла: %w", err)
	}
	return &out, nil
}

// DownloadFile реализует Client.
func (c *httpClient) DownloadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/files/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания файла %s: %w", name, err)
	}
	return resp.Body, nil
}

// Export реализует Client.
func (c *httpClient) Export(ctx context.Context, batchID string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/export", batchQuery(batchID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("ошибка выгрузки пакета %s: %w", batchID, err)
	}
	return resp.Body, nil
}
