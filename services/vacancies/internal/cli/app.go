package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vacancyhub/services/vacancies/internal/models"
	"vacancyhub/services/vacancies/internal/query"

	"go.uber.org/zap"
)

type Service interface {
	Reset(ctx context.Context) error
	Ingest(ctx context.Context, keyword string) (int, error)
	Query(ctx context.Context, params query.Params) ([]models.Vacancy, error)
	DeleteVacancy(ctx context.Context, vacancy models.Vacancy) (int, error)
	ListAll(ctx context.Context) ([]models.Vacancy, error)
	Archive(ctx context.Context) (int, error)
}

const menu = `
1. Поиск вакансий
2. Показать все сохранённые вакансии
3. Удалить вакансию из последней выдачи
4. Архивировать сохранённые вакансии
0. Выход
`

// App is the interactive console. It reads answers line by line from in and
// writes prompts and results to out. End of input ends the session.
type App struct {
	logger  *zap.Logger
	service Service
	in      *bufio.Scanner
	out     io.Writer
	last    []models.Vacancy
}

func NewApp(logger *zap.Logger, service Service, in io.Reader, out io.Writer) *App {
	return &App{
		logger:  logger,
		service: service,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

func (a *App) Run(ctx context.Context) error {
	for {
		fmt.Fprint(a.out, menu)
		choice, err := a.ask("Выберите действие: ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "1":
			err = a.search(ctx)
		case "2":
			err = a.list(ctx)
		case "3":
			err = a.delete(ctx)
		case "4":
			err = a.archive(ctx)
		case "0":
			fmt.Fprintln(a.out, "До свидания!")
			return nil
		default:
			fmt.Fprintln(a.out, "Неизвестное действие")
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("action failed", zap.String("choice", choice), zap.Error(err))
			fmt.Fprintf(a.out, "Ошибка: %v\n", err)
		}
	}
}

// search asks for the query parameters, replaces the working set with fresh
// vacancies for the search query and prints the best matches from it.
func (a *App) search(ctx context.Context) error {
	searchQuery, err := a.ask("Введите поисковый запрос: ")
	if err != nil {
		return err
	}
	topN, err := a.askInt("Введите количество вакансий для вывода в топ N: ")
	if err != nil {
		return err
	}
	filter, err := a.ask("Введите ключевые слова для фильтрации вакансий: ")
	if err != nil {
		return err
	}
	desiredSalary, err := a.askInt("Введите желаемую зарплату: ")
	if err != nil {
		return err
	}

	if err := a.service.Reset(ctx); err != nil {
		return err
	}
	a.last = nil

	keyword := strings.ToLower(searchQuery)
	count, err := a.service.Ingest(ctx, keyword)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Загружено вакансий: %d\n", count)

	result, err := a.service.Query(ctx, query.Params{
		Keywords:      strings.Fields(filter),
		DesiredSalary: desiredSalary,
		TopN:          topN,
	})
	if err != nil {
		return err
	}

	a.last = result
	a.print(result)
	return nil
}

func (a *App) list(ctx context.Context) error {
	all, err := a.service.ListAll(ctx)
	if err != nil {
		return err
	}
	a.last = all
	a.print(all)
	return nil
}

func (a *App) delete(ctx context.Context) error {
	if len(a.last) == 0 {
		fmt.Fprintln(a.out, "Нет вакансий для удаления")
		return nil
	}

	var n int
	for {
		var err error
		n, err = a.askInt(fmt.Sprintf("Номер вакансии (1-%d): ", len(a.last)))
		if err != nil {
			return err
		}
		if n >= 1 && n <= len(a.last) {
			break
		}
		fmt.Fprintln(a.out, "Нет вакансии с таким номером")
	}

	vacancy := a.last[n-1]
	removed, err := a.service.DeleteVacancy(ctx, vacancy)
	if err != nil {
		return err
	}

	a.last = append(a.last[:n-1:n-1], a.last[n:]...)
	fmt.Fprintf(a.out, "Удалено записей: %d\n", removed)
	return nil
}

func (a *App) archive(ctx context.Context) error {
	count, err := a.service.Archive(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Заархивировано вакансий: %d\n", count)
	return nil
}

func (a *App) print(vacancies []models.Vacancy) {
	if len(vacancies) == 0 {
		fmt.Fprintln(a.out, "Вакансии не найдены")
		return
	}
	for i, v := range vacancies {
		fmt.Fprintf(a.out, "%d. %s\n\n", i+1, v)
	}
}

func (a *App) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

// askInt repeats prompt until the answer is a whole number.
func (a *App) askInt(prompt string) (int, error) {
	for {
		answer, err := a.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(a.out, "Введите целое число")
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
