package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/TedXpro/Comparisons-Website/internal/api"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return api.NewHTTPClient(server.URL + "/")
}

func TestHTTPClient_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Успех", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/register", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req models.RegisterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "dealer", req.Username)
			assert.Equal(t, "secret", req.Password)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"User registered successfully"}`))
		})

		require.NoError(t, client.Register(ctx, "dealer", "secret"))
	})

	t.Run("Имя занято", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Имя пользователя уже занято", http.StatusConflict)
		})

		err := client.Register(ctx, "dealer", "secret")
		require.Error(t, err)

		var statusErr *api.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
		assert.Equal(t, "Имя пользователя уже занято", statusErr.Message)
	})
}

func TestHTTPClient_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		handler       http.HandlerFunc
		expectedToken string
		expectedErr   error
		errContains   string
	}{
		{
			name: "Успех",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/login", r.URL.Path)
				_, _ = w.Write([]byte(`{"token":"jwt-token"}`))
			},
			expectedToken: "jwt-token",
		},
		{
			name: "Неверный пароль",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "Неверное имя пользователя или пароль", http.StatusUnauthorized)
			},
			expectedErr: api.ErrAuthorization,
		},
		{
			name: "Пустой токен",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"token":""}`))
			},
			errContains: "пустой токен",
		},
		{
			name: "Некорректный JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{`))
			},
			errContains: "ошибка декодирования ответа",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			token, err := client.Login(ctx, "dealer", "secret")

			switch {
			case tt.expectedErr != nil:
				require.ErrorIs(t, err, tt.expectedErr)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}

func TestHTTPClient_AuthHeaders(t *testing.T) {
	ctx := context.Background()
	var (
		mu       sync.Mutex
		lastAuth string
	)
	authHeader := func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastAuth
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastAuth = r.Header.Get("Authorization")
		mu.Unlock()
		if r.URL.Path == "/login" {
			_, _ = w.Write([]byte(`{"token":"jwt-token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"rules":[]}`))
	})

	t.Run("Без учетных данных", func(t *testing.T) {
		_, err := client.GetRules(ctx, "b1")
		require.NoError(t, err)
		assert.Empty(t, authHeader())
	})

	t.Run("Basic", func(t *testing.T) {
		client.SetBasicAuth("dealer", "secret")
		_, err := client.GetRules(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(authHeader(), "Basic "))
	})

	t.Run("Токен после входа важнее Basic", func(t *testing.T) {
		_, err := client.Login(ctx, "dealer", "secret")
		require.NoError(t, err)
		_, err = client.GetRules(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer jwt-token", authHeader())
	})

	t.Run("SetAuthToken", func(t *testing.T) {
		client.SetAuthToken("other-token")
		_, err := client.GetRules(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer other-token", authHeader())
	})
}

func TestHTTPClient_UploadAndGetData(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload-data":
			assert.Equal(t, http.MethodPost, r.Method)
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `[{"dealer_name":"A"}]`, string(body))
			_, _ = w.Write([]byte(`{"message":"Data uploaded successfully","items_count":1,` +
				`"batch_id":"b1","dashboard_url":"http://localhost:8000/dashboard?batch_id=b1"}`))
		case "/get-data":
			assert.Equal(t, "b1", r.URL.Query().Get("batch_id"))
			_, _ = w.Write([]byte(`{"batch_id":"b1","data":[{"id":1,"batch_id":"b1","dealer_name":"A","kw":110}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	up, err := client.UploadData(ctx, strings.NewReader(`[{"dealer_name":"A"}]`))
	require.NoError(t, err)
	assert.Equal(t, "b1", up.BatchID)
	assert.Equal(t, 1, up.ItemsCount)

	data, err := client.GetData(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, data.Data, 1)
	assert.Equal(t, "A", data.Data[0].DealerName.String)
	assert.Equal(t, "110", data.Data[0].KW.Decimal.String())
	assert.False(t, data.Data[0].CarMark.Valid)
}

func TestHTTPClient_Rules(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rules", r.URL.Path)
		if r.Method == http.MethodPost {
			var req models.StoreRuleRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "b1", *req.BatchID)
			assert.Equal(t, "kw >= 100", *req.Rules)
			_, _ = w.Write([]byte(`{"status":"success","message":"Rules stored successfully"}`))
			return
		}
		_, _ = w.Write([]byte(`{"rules":["kw >= 100"]}`))
	})

	require.NoError(t, client.StoreRule(ctx, "b1", "kw >= 100"))

	rules, err := client.GetRules(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"kw >= 100"}, rules)
}

func TestHTTPClient_UploadPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("Файл уходит частью file", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upload-pdf", r.URL.Path)
			file, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "%PDF-1.4", string(content))
			assert.Equal(t, "report.pdf", header.Filename)

			_, _ = w.Write([]byte(`{"message":"File uploaded successfully","url":"http://h/files/x.pdf"}`))
		})

		res, err := client.UploadPDF(ctx, "/tmp/report.pdf", strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, "http://h/files/x.pdf", res.URL)
	})

	t.Run("Превышен лимит запросов", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Слишком много запросов", http.StatusTooManyRequests)
		})

		_, err := client.UploadPDF(ctx, "report.pdf", strings.NewReader("%PDF"))
		require.ErrorIs(t, err, api.ErrRateLimited)
	})
}

func TestHTTPClient_Downloads(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/a.pdf":
			_, _ = w.Write([]byte("%PDF"))
		case r.URL.Path == "/export" && r.URL.Query().Get("batch_id") == "b1":
			_, _ = w.Write([]byte("PK"))
		default:
			http.Error(w, "Файл не найден", http.StatusNotFound)
		}
	})

	t.Run("Файл", func(t *testing.T) {
		body, err := client.DownloadFile(ctx, "a.pdf")
		require.NoError(t, err)
		defer body.Close()
		content, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(content))
	})

	t.Run("Нет файла", func(t *testing.T) {
		_, err := client.DownloadFile(ctx, "missing.pdf")
		require.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("Выгрузка XLSX", func(t *testing.T) {
		body, err := client.Export(ctx, "b1")
		require.NoError(t, err)
		defer body.Close()
		content, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "PK", string(content))
	})

	t.Run("Пустой пакет", func(t *testing.T) {
		_, err := client.Export(ctx, "nope")
		require.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestHTTPClient_ServerUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := api.NewHTTPClient(url).GetData(context.Background(), "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка выполнения запроса")
}
