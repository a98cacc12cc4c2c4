package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const stamp = "2006-01-02 15:04:05"

// ExportService renders back-office spreadsheets.
type ExportService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewExportService(orders *repositories.OrderRepository, products *repositories.ProductRepository) *ExportService {
	return &ExportService{orders: orders, products: products}
}

func header(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, c := range cols {
		cell := row.AddCell()
		cell.SetString(c)
		cell.GetStyle().Font.Bold = true
	}
}

func encode(file *xlsx.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Orders writes every order matching status, one row per order line, with
// the order columns repeated.
func (s *ExportService) Orders(ctx context.Context, status string) ([]byte, error) {
	orders, err := s.orders.List(ctx, strings.ToUpper(status))
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Commandes")
	if err != nil {
		return nil, err
	}
	header(sheet, "Commande", "Date", "Client", "Email", "Statut", "Paiement",
		"Produit", "SKU", "Variation", "Quantité", "Prix unitaire", "Sous-total", "Total commande",
		"Adresse", "Ville", "Code postal", "Pays")

	for _, o := range orders {
		name, email := "", ""
		if o.User != nil {
			name, email = o.User.Name, o.User.Email
		}
		for _, it := range o.OrderItems {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(o.ID))
			row.AddCell().SetString(o.CreatedAt.Format(stamp))
			row.AddCell().SetString(name)
			row.AddCell().SetString(email)
			row.AddCell().SetString(o.Status)
			row.AddCell().SetString(o.PaymentMethod)

			product, sku := "", ""
			if it.Product != nil {
				product, sku = it.Product.Translation(models.DefaultLocale).Name, it.Product.SKU
			}
			variation := ""
			if it.Variation != nil {
				variation = it.Variation.VariationType + " " + it.Variation.VariationValue
			}
			row.AddCell().SetString(product)
			row.AddCell().SetString(sku)
			row.AddCell().SetString(variation)
			row.AddCell().SetInt(it.Quantity)
			row.AddCell().SetFloat(it.Price.InexactFloat64())
			row.AddCell().SetFloat(it.Subtotal().InexactFloat64())
			row.AddCell().SetFloat(o.TotalAmount.InexactFloat64())
			row.AddCell().SetString(o.ShippingAddress)
			row.AddCell().SetString(o.City)
			row.AddCell().SetString(o.PostalCode)
			row.AddCell().SetString(o.Country)
		}
	}
	return encode(file)
}

// Products writes the catalog with French text and every variation on its
// own row.
func (s *ExportService) Products(ctx context.Context) ([]byte, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Produits")
	if err != nil {
		return nil, err
	}
	header(sheet, "ID", "SKU", "Nom", "Catégorie", "Prix de base", "Vedette",
		"Variation", "Supplément", "Stock", "Images", "Créé le")

	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name(models.DefaultLocale)
		}
		variations := p.Variations
		if len(variations) == 0 {
			variations = []models.ProductVariation{{}}
		}
		for _, v := range variations {
			row := sheet.AddRow()
			row.AddCell().SetInt(int(p.ID))
			row.AddCell().SetString(p.SKU)
			row.AddCell().SetString(p.Translation(models.DefaultLocale).Name)
			row.AddCell().SetString(category)
			row.AddCell().SetFloat(p.BasePrice.InexactFloat64())
			row.AddCell().SetBool(p.Featured)
			if v.ID != 0 {
				row.AddCell().SetString(v.VariationType + " " + v.VariationValue)
				row.AddCell().SetFloat(v.AdditionalPrice.InexactFloat64())
				row.AddCell().SetInt(v.Inventory)
			} else {
				row.AddCell()
				row.AddCell()
				row.AddCell()
			}
			row.AddCell().SetString(strings.Join(p.Images, " "))
			row.AddCell().SetString(p.CreatedAt.Format(stamp))
		}
	}
	return encode(file)
}
