package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/zasious/supermarketMVC/internal/models"
	"github.com/zasious/supermarketMVC/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	godotenv.Load()

	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	adminUsername := addAdminCmd.String("username", "", "Username for the admin account")
	adminEmail := addAdminCmd.String("email", "", "Email for the admin account")
	adminPassword := addAdminCmd.String("password", "", "Password for the admin account")

	addProductCmd := flag.NewFlagSet("add-product", flag.ExitOnError)
	productName := addProductCmd.String("name", "", "Product name")
	productPrice := addProductCmd.Float64("price", 0, "Product price")
	productQty := addProductCmd.Int("quantity", 0, "Stock on hand")
	productCategory := addProductCmd.String("category", "General", "Product category")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-admin' or 'add-product' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *adminUsername == "" || *adminEmail == "" || *adminPassword == "" {
			fmt.Println("username, email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		createAdmin(*adminUsername, *adminEmail, *adminPassword)
	case "add-product":
		addProductCmd.Parse(os.Args[2:])
		if *productName == "" || *productPrice < 0 || *productQty < 0 {
			fmt.Println("name is required; price and quantity must be non-negative")
			addProductCmd.PrintDefaults()
			os.Exit(1)
		}
		createProduct(*productName, *productPrice, *productQty, *productCategory)
	default:
		fmt.Println("expected 'add-admin' or 'add-product' subcommand")
		os.Exit(1)
	}
}

func openStore() *store.Store {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./supermarket.db"
	}
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure the schema exists if running the cli before the server
	if err := db.Migrate(migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createAdmin(username, email, password string) {
	db := openStore()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     "admin",
	}
	if err := db.CreateUser(user); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Admin '%s' created successfully.\n", username)
}

func createProduct(name string, price float64, quantity int, category string) {
	db := openStore()

	product := &models.Product{
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Category: category,
	}
	if err := db.CreateProduct(product); err != nil {
		log.Fatalf("Failed to create product: %v", err)
	}

	fmt.Printf("Product '%s' created with id %d.\n", name, product.ID)
}
