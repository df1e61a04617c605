package credential

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"OrderDeskPlatform/internal/domain"
)

// DefaultCSVColumn колонка с идентификатором клиента в выгрузке
const DefaultCSVColumn = "Customer ID"

// CSVStore читает выгрузку клиентов при каждой проверке, поэтому удаление
// клиента из файла вступает в силу со следующего запроса.
type CSVStore struct {
	path   string
	column string
}

// NewCSVStore создает хранилище поверх CSV файла
func NewCSVStore(path, column string) *CSVStore {
	if column == "" {
		column = DefaultCSVColumn
	}
	return &CSVStore{path: path, column: column}
}

// Exists проверяет наличие клиента в файле
func (s *CSVStore) Exists(ctx context.Context, customerID domain.CustomerID) (bool, error) {
	if customerID.IsZero() {
		return false, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return false, fmt.Errorf("open customer file %s: %w", s.path, err)
	}
	defer f.Close()

	return s.scan(ctx, f, customerID.Key())
}

// Ping проверяет, что файл доступен и содержит нужную колонку
func (s *CSVStore) Ping(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open customer file %s: %w", s.path, err)
	}
	defer f.Close()

	_, err = s.scan(ctx, f, "")
	return err
}

func (s *CSVStore) scan(ctx context.Context, r io.Reader, want string) (bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, fmt.Errorf("customer file %s is empty", s.path)
		}
		return false, fmt.Errorf("read customer file header: %w", err)
	}

	column := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")) == s.column {
			column = i
			break
		}
	}
	if column < 0 {
		return false, fmt.Errorf("column %q not found in customer file", s.column)
	}
	if want == "" {
		return false, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read customer file: %w", err)
		}
		if column < len(record) && domain.CustomerID(record[column]).Key() == want {
			return true, nil
		}
	}
}
