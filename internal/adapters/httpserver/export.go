package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/shirtso/shirtso/internal/domain"
	"github.com/shirtso/shirtso/internal/usecase"
)

var xlsxHeader = []string{"ProductID", "Name", "Size", "Stock", "Price", "Currency", "Supplier", "Description"}

// adminExportXLSX streams the flat catalog, one row per size variant, in the
// same column layout the import accepts.
func (s *Server) adminExportXLSX(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	rows, _, err := s.products.Products.List(r.Context(), domain.ProductFilter{Page: 1, PageSize: 10000})
	if err != nil {
		http.Error(w, "list", 500)
		return
	}

	f := excelize.NewFile()
	sheet := "Catalog"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		http.Error(w, "xlsx", 500)
		return
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range xlsxHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, p := range rows {
		values := []any{p.ID, p.Name, p.Size, p.Stock, p.Price, p.Currency, p.Supplier, p.Description}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="catalog-%s.xlsx"`, time.Now().Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("write xlsx export")
	}
}

// adminImportXLSX ingests a supplier sheet. Rows group by name: every row
// becomes one size variant sharing the group slug. Existing (name, size)
// pairs update price and stock instead of duplicating.
func (s *Server) adminImportXLSX(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := r.ParseMultipartForm(25 << 20); err != nil {
		http.Error(w, "multipart", 400)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file", 400)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		http.Error(w, "file", 400)
		return
	}

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		http.Error(w, "xlsx", 400)
		return
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		http.Error(w, "empty sheet", 400)
		return
	}

	colIdx := headerIndex(rows[0])
	created, updated, skipped := 0, 0, 0
	for _, row := range rows[1:] {
		name := cellAt(row, colOf(colIdx, "name"))
		size := strings.ToUpper(cellAt(row, colOf(colIdx, "size")))
		if name == "" || size == "" {
			skipped++
			continue
		}
		stock, _ := strconv.Atoi(cellAt(row, colOf(colIdx, "stock")))
		price, _ := strconv.ParseFloat(cellAt(row, colOf(colIdx, "price")), 64)
		currency := cellAt(row, colOf(colIdx, "currency"))
		supplier := cellAt(row, colOf(colIdx, "supplier"))
		desc := cellAt(row, colOf(colIdx, "description"))

		slug := usecase.Slugify(name)
		existing := findVariantRow(r, s, slug, size)
		if existing != nil {
			existing.Stock = stock
			if price > 0 {
				existing.Price = price
			}
			if err := s.products.Update(r.Context(), existing); err != nil {
				skipped++
				continue
			}
			updated++
			continue
		}
		p := &domain.Product{
			Slug: slug, Name: name, Size: size, Stock: stock,
			Price: price, Currency: currency, Supplier: supplier,
			Description: desc, Active: true,
		}
		if err := s.products.Create(r.Context(), p); err != nil {
			log.Error().Err(err).Str("name", name).Str("size", size).Msg("import row")
			skipped++
			continue
		}
		created++
	}
	writeJSON(w, 200, map[string]any{"created": created, "updated": updated, "skipped": skipped})
}

func findVariantRow(r *http.Request, s *Server, slug, size string) *domain.Product {
	rows, err := s.products.Products.FindGroup(r.Context(), slug)
	if err != nil {
		return nil
	}
	for i := range rows {
		if rows[i].Size == size {
			return &rows[i]
		}
	}
	return nil
}

func headerIndex(header []string) map[string]int {
	idx := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case "productid", "product_id", "id":
			idx["id"] = i
		case "name", "productname", "product":
			idx["name"] = i
		case "size":
			idx["size"] = i
		case "stock", "qty", "quantity":
			idx["stock"] = i
		case "price":
			idx["price"] = i
		case "currency":
			idx["currency"] = i
		case "supplier", "brand":
			idx["supplier"] = i
		case "description", "desc":
			idx["description"] = i
		}
	}
	return idx
}

func colOf(idx map[string]int, key string) int {
	if v, ok := idx[key]; ok {
		return v
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
