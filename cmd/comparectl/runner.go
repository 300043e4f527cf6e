package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/TedXpro/Comparisons-Website/internal/api"
	"github.com/TedXpro/Comparisons-Website/internal/logger"
)

//nolint:gochecknoglobals // Логгер пакета.
var cliLog = logger.Component("comparectl")

var errMissingArg = errors.New("не указан обязательный аргумент")

// Runner хранит зависимости команд CLI.
type Runner struct {
	output    io.Writer
	newClient func(baseURL string) api.Client
}

// RunnerOpts - параметры создания Runner.
type RunnerOpts struct {
	Output    io.Writer
	NewClient func(baseURL string) api.Client
}

// NewRunner создает Runner, подставляя stdout и HTTP клиент по умолчанию.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewClient == nil {
		opts.NewClient = api.NewHTTPClient
	}
	return &Runner{output: opts.Output, newClient: opts.NewClient}
}

// client создает API клиент по глобальным флагам.
func (r *Runner) client(cmd *cli.Command) (api.Client, error) {
	if err := logger.Setup(cmd.String("log-level"), logger.FormatText); err != nil {
		return nil, err
	}
	c := r.newClient(cmd.String("server"))
	switch {
	case cmd.String("token") != "":
		c.SetAuthToken(cmd.String("token"))
	case cmd.String("user") != "":
		c.SetBasicAuth(cmd.String("user"), cmd.String("password"))
	}
	return c, nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", errMissingArg, name)
	}
	return v, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.output, format, args...)
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("ошибка вывода JSON: %w", err)
	}
	return nil
}

// Register регистрирует пользователя из флагов --user и --password.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	user := cmd.String("user")
	if user == "" {
		return fmt.Errorf("%w: --user", errMissingArg)
	}
	if err = c.Register(ctx, user, cmd.String("password")); err != nil {
		return err
	}
	r.printf("Пользователь %s зарегистрирован\n", user)
	return nil
}

// Login печатает JWT токен для последующих вызовов с --token.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	token, err := c.Login(ctx, cmd.String("user"), cmd.String("password"))
	if err != nil {
		return err
	}
	r.printf("%s\n", token)
	return nil
}

// Upload загружает JSON-файл с записями. "-" читает stdin.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "file")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if path != "-" {
		f, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("ошибка открытия файла %s: %w", path, openErr)
		}
		defer f.Close()
		src = f
	}

	res, err := c.UploadData(ctx, src)
	if err != nil {
		return err
	}
	cliLog.Debugf("Загружено %d записей", res.ItemsCount)
	r.printf("batch_id: %s\nзаписей: %d\nдашборд: %s\n", res.BatchID, res.ItemsCount, res.DashboardURL)
	return nil
}

// Get печатает записи пакета в JSON.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	batchID, err := requireArg(cmd, "batch_id")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	res, err := c.GetData(ctx, batchID)
	if err != nil {
		return err
	}
	return r.writeJSON(res)
}

// RulesAdd сохраняет правило пакета.
func (r *Runner) RulesAdd(ctx context.Context, cmd *cli.Command) error {
	batchID, err := requireArg(cmd, "batch_id")
	if err != nil {
		return err
	}
	text, err := requireArg(cmd, "text")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	if err = c.StoreRule(ctx, batchID, text); err != nil {
		return err
	}
	r.printf("Правило сохранено\n")
	return nil
}

// RulesList печатает правила пакета по одному в строке.
func (r *Runner) RulesList(ctx context.Context, cmd *cli.Command) error {
	batchID, err := requireArg(cmd, "batch_id")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	rules, err := c.GetRules(ctx, batchID)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		r.printf("%s\n", rule)
	}
	return nil
}

// PDFUpload загружает PDF-файл и печатает ссылку.
func (r *Runner) PDFUpload(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "file")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	res, err := c.UploadPDF(ctx, path, f)
	if err != nil {
		return err
	}
	r.printf("%s\n", res.URL)
	return nil
}

// PDFGet скачивает файл по имени.
func (r *Runner) PDFGet(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	body, err := c.DownloadFile(ctx, name)
	if err != nil {
		return err
	}
	defer body.Close()

	out := cmd.String("output")
	if out == "" {
		out = filepath.Base(name)
	}
	return r.save(out, body)
}

// Export скачивает пакет в XLSX.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	batchID, err := requireArg(cmd, "batch_id")
	if err != nil {
		return err
	}
	c, err := r.client(cmd)
	if err != nil {
		return err
	}
	body, err := c.Export(ctx, batchID)
	if err != nil {
		return err
	}
	defer body.Close()

	out := cmd.String("output")
	if out == "" {
		out = "comparisons-" + batchID + ".xlsx"
	}
	return r.save(out, body)
}

func (r *Runner) save(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}
	r.printf("Сохранено %s (%d байт)\n", path, n)
	return nil
}
