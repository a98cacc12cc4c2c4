package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

func init() {
	Register("categories", seedCategories)
	Register("products", seedProducts)
}

type text struct{ en, fr, ar string }

var categories = []struct {
	slug string
	name text
	desc text
}{
	{"rings",
		text{"Luxury Rings", "Bagues de Luxe", "خواتم فاخرة"},
		text{"Timeless rings set with exceptional stones", "Des bagues intemporelles serties de pierres d'exception", "خواتم خالدة مرصعة بأحجار استثنائية"}},
	{"bracelets",
		text{"Elegant Bracelets", "Bracelets Élégants", "أساور أنيقة"},
		text{"Bracelets crafted in our Paris workshop", "Des bracelets façonnés dans notre atelier parisien", "أساور مصنوعة في ورشتنا الباريسية"}},
	{"necklaces",
		text{"Exquisite Necklaces", "Colliers Exquis", "قلائد رائعة"},
		text{"Necklaces of pearls and precious stones", "Des colliers de perles et de pierres précieuses", "قلائد من اللؤلؤ والأحجار الكريمة"}},
	{"earrings",
		text{"Radiant Earrings", "Boucles d'Oreilles Éclatantes", "أقراط متألقة"},
		text{"Earrings that capture the light", "Des boucles d'oreilles qui captent la lumière", "أقراط تأسر الضوء"}},
	{"watches",
		text{"Prestige Watches", "Montres de Prestige", "ساعات فاخرة"},
		text{"Jewelry watches with precious movements", "Des montres joaillières aux mouvements précieux", "ساعات مجوهرات بحركات ثمينة"}},
}

func seedCategories(ctx context.Context, db *gorm.DB) error {
	for _, c := range categories {
		cat := models.Category{Slug: c.slug}
		if err := db.Where(models.Category{Slug: c.slug}).FirstOrCreate(&cat).Error; err != nil {
			return err
		}
		for _, tr := range []models.CategoryTranslation{
			{Language: "en", Name: c.name.en, Description: c.desc.en},
			{Language: "fr", Name: c.name.fr, Description: c.desc.fr},
			{Language: "ar", Name: c.name.ar, Description: c.desc.ar},
		} {
			tr.CategoryID = cat.ID
			err := db.Where(models.CategoryTranslation{CategoryID: cat.ID, Language: tr.Language}).
				Assign(models.CategoryTranslation{Name: tr.Name, Description: tr.Description}).
				FirstOrCreate(&tr).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

type seedVariation struct {
	value     string
	inventory int
	extra     string
}

var products = []struct {
	sku        string
	price      string
	category   string
	featured   bool
	images     []string
	name       text
	desc       text
	varType    string
	variations []seedVariation
}{
	{
		sku: "ROUGE-PASSION-001", price: "4999.99", category: "rings", featured: true,
		images: []string{"/images/products/rings/rouge-passion-01.jpg", "/images/products/rings/rouge-passion-02.jpg"},
		name:   text{"Rouge Passion Diamond Ring", "Bague Diamant Rouge Passion", "خاتم الماس روج باسيون"},
		desc: text{
			"A brilliant-cut diamond embraced by a halo of rubies.",
			"Un diamant taille brillant enlacé d'un halo de rubis.",
			"ألماسة بقطع لامع تحيط بها هالة من الياقوت.",
		},
		varType: "Size",
		variations: []seedVariation{
			{"48", 5, "0"}, {"50", 7, "0"}, {"52", 10, "0"}, {"54", 8, "0"}, {"56", 6, "0"},
		},
	},
	{
		sku: "IMPERIAL-BRACELET-001", price: "2999.99", category: "bracelets",
		images: []string{"/images/products/bracelets/imperial-gold-01.jpg", "/images/products/bracelets/imperial-gold-02.jpg"},
		name:   text{"Imperial Gold Bracelet", "Bracelet Impérial en Or", "سوار إمبريال من الذهب"},
		desc: text{
			"Hand-braided 18k yellow gold links.",
			"Maillons en or jaune 18 carats tressés à la main.",
			"حلقات من الذهب الأصفر عيار 18 مضفرة يدويا.",
		},
		varType: "Length",
		variations: []seedVariation{
			{"16cm", 12, "0"}, {"18cm", 15, "0"}, {"20cm", 8, "100"},
		},
	},
	{
		sku: "DIVINE-PEARL-001", price: "3499.99", category: "necklaces",
		images: []string{"/images/products/necklaces/divine-pearl-01.jpg", "/images/products/necklaces/divine-pearl-02.jpg"},
		name:   text{"Divine Pearl Necklace", "Collier Perle Divine", "قلادة اللؤلؤ الإلهية"},
		desc: text{
			"South Sea pearls on a white gold clasp.",
			"Perles des mers du Sud sur un fermoir en or blanc.",
			"لآلئ البحار الجنوبية على مشبك من الذهب الأبيض.",
		},
		varType: "Length",
		variations: []seedVariation{
			{"42cm", 10, "0"}, {"45cm", 12, "0"}, {"50cm", 8, "200"},
		},
	},
}

func seedProducts(ctx context.Context, db *gorm.DB) error {
	for _, sp := range products {
		var existing int64
		if err := db.Model(&models.Product{}).Where("sku = ?", sp.sku).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		var cat models.Category
		if err := db.Where("slug = ?", sp.category).First(&cat).Error; err != nil {
			return err
		}

		p := models.Product{
			SKU:        sp.sku,
			BasePrice:  decimal.RequireFromString(sp.price),
			CategoryID: cat.ID,
			Images:     sp.images,
			Featured:   sp.featured,
			Translations: []models.ProductTranslation{
				{Language: "en", Name: sp.name.en, Description: sp.desc.en},
				{Language: "fr", Name: sp.name.fr, Description: sp.desc.fr},
				{Language: "ar", Name: sp.name.ar, Description: sp.desc.ar},
			},
		}
		for _, v := range sp.variations {
			p.Variations = append(p.Variations, models.ProductVariation{
				VariationType:   sp.varType,
				VariationValue:  v.value,
				AdditionalPrice: decimal.RequireFromString(v.extra),
				Inventory:       v.inventory,
			})
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
