package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultAddr           = ":8000"
	defaultPublicBaseURL  = "http://localhost:8000"
	defaultFilesDir       = "./files"
	defaultMaxUploadBytes = 20 << 20
	defaultCacheTTL       = 10 * time.Minute
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultMinioEndpoint  = "localhost:9000"
	defaultMinioBucket    = "comparison-files"

	envConfigFile = "CONFIG_FILE"

	storageLocal = "local"
	storageMinio = "minio"

	authOff       = "off"
	authDashboard = "dashboard"
	authAll       = "all"
)

// config хранит конфигурацию сервера.
type config struct {
	Addr          string `toml:"addr"`
	PublicBaseURL string `toml:"public_base_url"`
	DatabaseDSN   string `toml:"database_dsn"`
	CertFile      string `toml:"tls_cert_file"`
	KeyFile       string `toml:"tls_key_file"`
	JWTSecret     string `toml:"jwt_secret"`

	StorageBackend string `toml:"storage_backend"`
	FilesDir       string `toml:"files_dir"`
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioUser      string `toml:"minio_user"`
	MinioPassword  string `toml:"minio_password"`
	MinioBucket    string `toml:"minio_bucket"`
	MinioUseSSL    bool   `toml:"minio_use_ssl"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`

	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	CacheTTL      time.Duration `toml:"cache_ttl"`

	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	ValidatePayload bool   `toml:"validate_payload"`
	AuthMode        string `toml:"auth_mode"`
	AtomicIngest    bool   `toml:"atomic_ingest"`
}

// TLSEnabled сообщает, заданы ли и сертификат, и ключ.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

func defaultConfig() *config {
	return &config{
		Addr:            defaultAddr,
		PublicBaseURL:   defaultPublicBaseURL,
		StorageBackend:  storageLocal,
		FilesDir:        defaultFilesDir,
		MinioEndpoint:   defaultMinioEndpoint,
		MinioBucket:     defaultMinioBucket,
		MaxUploadBytes:  defaultMaxUploadBytes,
		CacheTTL:        defaultCacheTTL,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		ValidatePayload: true,
		AuthMode:        authDashboard,
		AtomicIngest:    true,
	}
}

// option связывает параметр конфигурации с переменной окружения и флагом.
type option struct {
	env   string
	flag  string
	usage string
	set   func(cfg *config, value string) error
}

func stringOpt(env, name, usage string, field func(*config) *string) option {
	return option{env: env, flag: name, usage: usage, set: func(cfg *config, v string) error {
		*field(cfg) = v
		return nil
	}}
}

func boolOpt(env, name, usage string, field func(*config) *bool) option {
	return option{env: env, flag: name, usage: usage, set: func(cfg *config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(cfg) = b
		return nil
	}}
}

func intOpt(env, name, usage string, field func(*config) *int) option {
	return option{env: env, flag: name, usage: usage, set: func(cfg *config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}}
}

//nolint:gochecknoglobals // Таблица параметров конфигурации.
var options = []option{
	stringOpt("SERVER_ADDR", "addr", "адрес HTTP сервера", func(c *config) *string { return &c.Addr }),
	stringOpt("PUBLIC_BASE_URL", "public-base-url", "внешний адрес сервера для ссылок",
		func(c *config) *string { return &c.PublicBaseURL }),
	stringOpt("DATABASE_DSN", "database-dsn", "строка подключения к PostgreSQL",
		func(c *config) *string { return &c.DatabaseDSN }),
	stringOpt("TLS_CERT_FILE", "cert-file", "путь к файлу TLS сертификата",
		func(c *config) *string { return &c.CertFile }),
	stringOpt("TLS_KEY_FILE", "key-file", "путь к файлу приватного ключа TLS",
		func(c *config) *string { return &c.KeyFile }),
	stringOpt("JWT_SECRET", "jwt-secret", "секрет подписи JWT", func(c *config) *string { return &c.JWTSecret }),
	stringOpt("STORAGE_BACKEND", "storage-backend", "хранилище файлов: local или minio",
		func(c *config) *string { return &c.StorageBackend }),
	stringOpt("FILES_DIR", "files-dir", "каталог локального хранилища файлов",
		func(c *config) *string { return &c.FilesDir }),
	stringOpt("MINIO_ENDPOINT", "minio-endpoint", "адрес MinIO", func(c *config) *string { return &c.MinioEndpoint }),
	stringOpt("MINIO_USER", "minio-user", "пользователь MinIO", func(c *config) *string { return &c.MinioUser }),
	stringOpt("MINIO_PASSWORD", "minio-password", "пароль MinIO",
		func(c *config) *string { return &c.MinioPassword }),
	stringOpt("MINIO_BUCKET", "minio-bucket", "бакет MinIO", func(c *config) *string { return &c.MinioBucket }),
	boolOpt("MINIO_USE_SSL", "minio-use-ssl", "подключаться к MinIO по TLS",
		func(c *config) *bool { return &c.MinioUseSSL }),
	{env: "MAX_UPLOAD_BYTES", flag: "max-upload-bytes", usage: "предельный размер загрузки в байтах",
		set: func(cfg *config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			cfg.MaxUploadBytes = n
			return nil
		}},
	stringOpt("REDIS_ADDR", "redis-addr", "адрес Redis (пусто - без кэша)",
		func(c *config) *string { return &c.RedisAddr }),
	stringOpt("REDIS_PASSWORD", "redis-password", "пароль Redis",
		func(c *config) *string { return &c.RedisPassword }),
	intOpt("REDIS_DB", "redis-db", "номер БД Redis", func(c *config) *int { return &c.RedisDB }),
	{env: "CACHE_TTL", flag: "cache-ttl", usage: "время жизни записей кэша",
		set: func(cfg *config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			cfg.CacheTTL = d
			return nil
		}},
	{env: "RATE_LIMIT_RPS", flag: "rate-limit-rps", usage: "лимит загрузок в секунду (0 - без лимита)",
		set: func(cfg *config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			cfg.RateLimitRPS = f
			return nil
		}},
	intOpt("RATE_LIMIT_BURST", "rate-limit-burst", "допустимый всплеск запросов",
		func(c *config) *int { return &c.RateLimitBurst }),
	stringOpt("LOG_LEVEL", "log-level", "уровень логирования", func(c *config) *string { return &c.LogLevel }),
	stringOpt("LOG_FORMAT", "log-format", "формат логов: text или json",
		func(c *config) *string { return &c.LogFormat }),
	boolOpt("VALIDATE_PAYLOAD", "validate-payload", "проверять входные данные",
		func(c *config) *bool { return &c.ValidatePayload }),
	stringOpt("AUTH_MODE", "auth-mode", "режим аутентификации: off, dashboard или all",
		func(c *config) *string { return &c.AuthMode }),
	boolOpt("ATOMIC_INGEST", "atomic-ingest", "сохранять пакет одной транзакцией",
		func(c *config) *bool { return &c.AtomicIngest }),
}

// parseConfig собирает конфигурацию: значения по умолчанию, затем TOML файл,
// затем переменные окружения и, наконец, флаги командной строки.
func parseConfig(args []string, lookupEnv func(string) (string, bool)) (*config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configFile := fs.String("config", "", "путь к TOML файлу конфигурации")
	values := make(map[string]*string, len(options))
	for _, opt := range options {
		values[opt.flag] = fs.String(opt.flag, "", opt.usage+" (env "+opt.env+")")
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg := defaultConfig()

	path := *configFile
	if !setFlags["config"] {
		path, _ = lookupEnv(envConfigFile)
	}
	if path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	for _, opt := range options {
		if v, ok := lookupEnv(opt.env); ok && v != "" {
			if err := opt.set(cfg, v); err != nil {
				return nil, fmt.Errorf("некорректное значение %s=%q: %w", opt.env, v, err)
			}
		}
	}
	for _, opt := range options {
		if setFlags[opt.flag] {
			if err := opt.set(cfg, *values[opt.flag]); err != nil {
				return nil, fmt.Errorf("некорректное значение флага -%s: %w", opt.flag, err)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
	}
	if err = toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
	}
	return nil
}

func (c *config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("не указана строка подключения к БД (DATABASE_DSN или -database-dsn)")
	}
	switch c.StorageBackend {
	case storageLocal, storageMinio:
	default:
		return fmt.Errorf("неизвестное хранилище файлов: %q", c.StorageBackend)
	}
	switch c.AuthMode {
	case authOff, authDashboard, authAll:
	default:
		return fmt.Errorf("неизвестный режим аутентификации: %q", c.AuthMode)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES должен быть положительным, получено %d", c.MaxUploadBytes)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("для TLS нужны и сертификат, и ключ")
	}
	return nil
}
