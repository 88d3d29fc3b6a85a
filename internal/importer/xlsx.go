// Package importer loads products from an .xlsx sheet and creates them
// through the storefront admin API.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheet       = errors.New("no sheets found in XLSX file")
	ErrNoRows        = errors.New("no data found in XLSX file")
	ErrMissingColumn = errors.New("required column missing")
)

// Row is one product read from the sheet. Line is the 1-based sheet row.
type Row struct {
	Line      int
	Product   storefrontapi.NewProduct
	ImagePath string
}

// Skipped is a sheet row that was not imported
type Skipped struct {
	Line   int
	Reason string
}

var knownColumns = map[string]bool{
	"name": true, "price": true, "category": true, "description": true, "color": true, "image": true,
}

// ReadProducts reads the first sheet. The header row names the columns
// (case-insensitive); name and price are required, image is a file path,
// and unknown columns are forwarded as extra form fields.
func ReadProducts(r io.Reader) ([]Row, []Skipped, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoRows
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"name", "price"} {
		if _, ok := header[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var (
		products []Row
		skipped  []Skipped
		seen     = make(map[string]bool)
	)
	for i, cells := range rows[1:] {
		line := i + 2
		cell := func(col string) string {
			idx, ok := header[col]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}

		if strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}

		name := cell("name")
		if name == "" {
			skipped = append(skipped, Skipped{Line: line, Reason: "missing name"})
			continue
		}
		price, err := decimal.NewFromString(cell("price"))
		if err != nil || price.IsNegative() {
			skipped = append(skipped, Skipped{Line: line, Reason: fmt.Sprintf("invalid price %q", cell("price"))})
			continue
		}

		key := strings.ToLower(name + "|" + cell("category"))
		if seen[key] {
			skipped = append(skipped, Skipped{Line: line, Reason: "duplicate product"})
			continue
		}
		seen[key] = true

		extra := map[string][]string{}
		for col, idx := range header {
			if knownColumns[col] || col == "" || idx >= len(cells) {
				continue
			}
			if v := strings.TrimSpace(cells[idx]); v != "" {
				extra[col] = []string{v}
			}
		}

		products = append(products, Row{
			Line: line,
			Product: storefrontapi.NewProduct{
				Name:        name,
				Price:       price.StringFixed(2),
				Category:    cell("category"),
				Description: cell("description"),
				Color:       cell("color"),
				Extra:       extra,
			},
			ImagePath: cell("image"),
		})
	}

	return products, skipped, nil
}

// Creator is the admin API surface the import needs
type Creator interface {
	CreateProduct(ctx context.Context, p storefrontapi.NewProduct) (*storefrontapi.Product, error)
}

type Result struct {
	Created int
	Failed  []Skipped
}

// Import creates the rows one by one. Image paths are resolved against
// imageDir. A failed row does not stop the import.
func Import(ctx context.Context, api Creator, rows []Row, imageDir string) Result {
	var result Result
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, Skipped{Line: row.Line, Reason: err.Error()})
			continue
		}
		if err := createRow(ctx, api, row, imageDir); err != nil {
			logger.Warn("Product import failed", map[string]interface{}{
				"line":  row.Line,
				"name":  row.Product.Name,
				"error": storefrontapi.Message(err),
			})
			result.Failed = append(result.Failed, Skipped{Line: row.Line, Reason: storefrontapi.Message(err)})
			continue
		}
		result.Created++
	}
	return result
}

func createRow(ctx context.Context, api Creator, row Row, imageDir string) error {
	product := row.Product
	if row.ImagePath != "" {
		path := row.ImagePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(imageDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		product.Image = &storefrontapi.ImageUpload{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     f,
		}
	}

	created, err := api.CreateProduct(ctx, product)
	if err != nil {
		return err
	}
	logger.Debug("Product imported", map[string]interface{}{
		"line":       row.Line,
		"product_id": created.ID,
	})
	return nil
}
