package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ikkim/storefront/pkg/storefrontapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheet(t *testing.T, rows ...[]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadProducts(t *testing.T) {
	r := sheet(t,
		[]interface{}{"Name", "Price", "Category", "Color", "Image", "Stock"},
		[]interface{}{"Bunny", 19.5, "Amigurumi", "Pink", "bunny.jpg", 3},
		[]interface{}{"", 10, "Bags"},
		[]interface{}{"Tote", "cheap", "Bags"},
		[]interface{}{"bunny", "12", "amigurumi"},
		[]interface{}{},
		[]interface{}{"Blanket", "42", "Blankets"},
	)

	rows, skipped, err := ReadProducts(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bunny := rows[0]
	assert.Equal(t, 2, bunny.Line)
	assert.Equal(t, "Bunny", bunny.Product.Name)
	assert.Equal(t, "19.50", bunny.Product.Price)
	assert.Equal(t, "Amigurumi", bunny.Product.Category)
	assert.Equal(t, "Pink", bunny.Product.Color)
	assert.Equal(t, "bunny.jpg", bunny.ImagePath)
	assert.Equal(t, "3", bunny.Product.Extra.Get("stock"))

	assert.Equal(t, "Blanket", rows[1].Product.Name)
	assert.Equal(t, 7, rows[1].Line)

	require.Len(t, skipped, 3)
	assert.Equal(t, Skipped{Line: 3, Reason: "missing name"}, skipped[0])
	assert.Equal(t, 4, skipped[1].Line)
	assert.Equal(t, Skipped{Line: 5, Reason: "duplicate product"}, skipped[2])
}

func TestReadProducts_MissingColumn(t *testing.T) {
	r := sheet(t,
		[]interface{}{"Name", "Category"},
		[]interface{}{"Bunny", "Amigurumi"},
	)

	_, _, err := ReadProducts(r)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadProducts_HeaderOnly(t *testing.T) {
	_, _, err := ReadProducts(sheet(t, []interface{}{"Name", "Price"}))
	assert.ErrorIs(t, err, ErrNoRows)
}

type fakeCreator struct {
	created []storefrontapi.NewProduct
	images  map[string]string
	failOn  string
}

func (f *fakeCreator) CreateProduct(_ context.Context, p storefrontapi.NewProduct) (*storefrontapi.Product, error) {
	if p.Name == f.failOn {
		return nil, &storefrontapi.APIError{Status: 400, Message: "Price is required"}
	}
	if p.Image != nil {
		data, err := io.ReadAll(p.Image.Content)
		if err != nil {
			return nil, err
		}
		f.images[p.Image.Filename] = string(data)
	}
	f.created = append(f.created, p)
	return &storefrontapi.Product{ID: "id-" + p.Name, Name: p.Name}, nil
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bunny.jpg"), []byte("jpeg bytes"), 0o644))

	api := &fakeCreator{images: map[string]string{}, failOn: "Broken"}
	rows := []Row{
		{Line: 2, Product: storefrontapi.NewProduct{Name: "Bunny", Price: "19.50"}, ImagePath: "bunny.jpg"},
		{Line: 3, Product: storefrontapi.NewProduct{Name: "Broken", Price: "1.00"}},
		{Line: 4, Product: storefrontapi.NewProduct{Name: "Ghost", Price: "1.00"}, ImagePath: "missing.png"},
		{Line: 5, Product: storefrontapi.NewProduct{Name: "Blanket", Price: "42.00"}},
	}

	result := Import(context.Background(), api, rows, dir)

	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, Skipped{Line: 3, Reason: "Price is required"}, result.Failed[0])
	assert.Equal(t, 4, result.Failed[1].Line)

	assert.Equal(t, "jpeg bytes", api.images["bunny.jpg"])
	assert.Equal(t, "image/jpeg", api.created[0].Image.ContentType)
}

func TestImport_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &fakeCreator{images: map[string]string{}}
	result := Import(ctx, api, []Row{{Line: 2, Product: storefrontapi.NewProduct{Name: "Bunny"}}}, "")

	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Failed, 1)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
	assert.Empty(t, api.created)
}
