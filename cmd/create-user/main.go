package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"complaint_desk_go/config"
	"complaint_desk_go/db"
	"complaint_desk_go/models"
	"complaint_desk_go/services"
)

// create-user bootstraps accounts, typically the first ADMIN, without going through the API.
// The password is read from the first line of stdin so it never appears in shell history.
func main() {
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	role := flag.String("role", models.RoleAdmin, "ADMIN, STAFF or USER")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatalf("Failed to read password: %v", err)
	}
	password = strings.TrimRight(password, "\r\n")

	// Bootstrap runs as a synthetic admin; no account exists yet to act as
	bootstrap := services.ActingUser{Role: models.RoleAdmin, Name: "create-user"}
	user, err := services.CreateUser(context.Background(), db.DB, bootstrap, services.CreateUserInput{
		Name:     *name,
		Email:    *email,
		Password: password,
		Role:     *role,
	})
	if err != nil {
		var validation *services.ValidationError
		switch {
		case errors.As(err, &validation):
			log.Fatalf("Invalid input: %v", validation)
		case errors.Is(err, services.ErrConflict):
			log.Fatalf("User with email %s already exists", *email)
		default:
			log.Fatalf("Failed to create user: %v", err)
		}
	}

	fmt.Println("User created successfully!")
	fmt.Printf("  ID:    %s\n", user.ID)
	fmt.Printf("  Name:  %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role:  %s\n", user.Role)
}
