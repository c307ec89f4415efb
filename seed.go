package main

import (
	"context"
	"log"

	models "online-store/model"
	"online-store/store"
)

func str(s string) *string { return &s }

// sampleProducts is the demo catalog inserted by `seed`.
var sampleProducts = []models.Product{
	{Name: "iPhone 15 Pro", Description: str("El último modelo de iPhone con cámara pro y chip A17 Pro"), Price: 999.99, Stock: 25, Category: str("Smartphones"), ImageURL: str("https://example.com/iphone15pro.jpg")},
	{Name: "Samsung Galaxy S24", Description: str("Smartphone Android de alta gama con pantalla OLED"), Price: 899.99, Stock: 30, Category: str("Smartphones"), ImageURL: str("https://example.com/galaxys24.jpg")},
	{Name: "MacBook Air M3", Description: str("Laptop ultradelgada con chip M3 de Apple"), Price: 1299.99, Stock: 15, Category: str("Laptops"), ImageURL: str("https://example.com/macbookair.jpg")},
	{Name: "Dell XPS 13", Description: str("Laptop compacta con procesador Intel de 12va generación"), Price: 1099.99, Stock: 20, Category: str("Laptops"), ImageURL: str("https://example.com/dellxps13.jpg")},
	{Name: `iPad Pro 12.9"`, Description: str("Tablet profesional con pantalla Liquid Retina XDR"), Price: 1099.99, Stock: 18, Category: str("Tablets"), ImageURL: str("https://example.com/ipadpro.jpg")},
	{Name: "Sony WH-1000XM5", Description: str("Audífonos con cancelación de ruido premium"), Price: 399.99, Stock: 40, Category: str("Audio"), ImageURL: str("https://example.com/sonywh1000xm5.jpg")},
	{Name: "Apple Watch Series 9", Description: str("Smartwatch con GPS y medición de oxígeno en sangre"), Price: 429.99, Stock: 35, Category: str("Wearables"), ImageURL: str("https://example.com/applewatch9.jpg")},
	{Name: "Gaming Mouse Logitech G Pro X", Description: str("Mouse gaming profesional con sensor HERO 25K"), Price: 79.99, Stock: 50, Category: str("Gaming"), ImageURL: str("https://example.com/logitechgpro.jpg")},
}

func seed(ctx context.Context, st *store.PostgresStore) error {
	if err := st.Migrate(ctx, store.MigrateCreate); err != nil {
		return err
	}
	n, err := st.SeedProducts(ctx, sampleProducts)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Println("Products already present, nothing seeded")
		return nil
	}
	log.Printf("Inserted %d sample products", n)
	return nil
}
