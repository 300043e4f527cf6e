package main

import "github.com/urfave/cli/v3"

// App собирает корневую команду CLI.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:    "comparectl",
		Usage:   "Клиент сервера сравнений автомобилей",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Адрес сервера",
				Value:   "http://localhost:8000",
				Sources: cli.EnvVars("COMPARECTL_SERVER"),
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Имя пользователя (Basic-аутентификация)",
				Sources: cli.EnvVars("COMPARECTL_USER"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Пароль",
				Sources: cli.EnvVars("COMPARECTL_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "JWT токен из команды login",
				Sources: cli.EnvVars("COMPARECTL_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Уровень логирования",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "register",
				Usage:  "Зарегистрировать пользователя --user с паролем --password",
				Action: r.Register,
			},
			{
				Name:   "login",
				Usage:  "Получить JWT токен",
				Action: r.Login,
			},
			{
				Name:      "upload",
				Usage:     "Загрузить JSON-массив записей (- для stdin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Action:    r.Upload,
			},
			{
				Name:      "get",
				Usage:     "Показать записи пакета",
				Arguments: []cli.Argument{&cli.StringArg{Name: "batch_id"}},
				Action:    r.Get,
			},
			{
				Name:  "rules",
				Usage: "Правила пакета",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Добавить правило",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "batch_id"},
							&cli.StringArg{Name: "text"},
						},
						Action: r.RulesAdd,
					},
					{
						Name:      "list",
						Usage:     "Показать правила",
						Arguments: []cli.Argument{&cli.StringArg{Name: "batch_id"}},
						Action:    r.RulesList,
					},
				},
			},
			{
				Name:  "pdf",
				Usage: "PDF-файлы",
				Commands: []*cli.Command{
					{
						Name:      "upload",
						Usage:     "Загрузить PDF",
						Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
						Action:    r.PDFUpload,
					},
					{
						Name:      "get",
						Usage:     "Скачать файл по имени",
						Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
						Flags:     []cli.Flag{outputFlag()},
						Action:    r.PDFGet,
					},
				},
			},
			{
				Name:      "export",
				Usage:     "Скачать пакет в XLSX",
				Arguments: []cli.Argument{&cli.StringArg{Name: "batch_id"}},
				Flags:     []cli.Flag{outputFlag()},
				Action:    r.Export,
			},
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Путь к файлу результата",
	}
}
