package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gorm.io/gorm"

	"loan-ledger/internal/adapter/identity/local"
	"loan-ledger/internal/config"
	"loan-ledger/internal/infrastructure/db"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address of the new user")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	admin := fs.Bool("admin", false, "Grant the admin role")
	dbPath := fs.String("db", "", "Path to a sqlite database (default: the configured MySQL store)")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost when -db is used")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-password <password>] [-admin] [-db <sqlite_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	gdb, bcryptCost, err := openStore(*dbPath, *cost)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	u, err := local.CreateAccount(context.Background(), gdb, bcryptCost, *email, password, *admin)
	if errors.Is(err, local.ErrEmailTaken) {
		return fmt.Errorf("user %s already exists", strings.ToLower(strings.TrimSpace(*email)))
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	role := "user"
	if u.Admin {
		role = "admin"
	}
	fmt.Fprintf(stdout, "User %s created successfully with UID %s (%s)\n", u.Email, u.UID, role)
	return nil
}

// openStore uses the sqlite file when given, otherwise the MySQL store from
// the environment, whose schema cmd/migrate manages.
func openStore(sqlitePath string, cost int) (*gorm.DB, int, error) {
	if sqlitePath != "" {
		gdb, err := db.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open database: %w", err)
		}
		if err := gdb.AutoMigrate(&local.Account{}); err != nil {
			return nil, 0, fmt.Errorf("failed to prepare users table: %w", err)
		}
		return gdb, cost, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("config: %w", err)
	}
	if cfg.IdentityProvider != config.IdentityLocal {
		return nil, 0, fmt.Errorf("adduser needs IDENTITY_PROVIDER=%s", config.IdentityLocal)
	}
	var gdb *gorm.DB
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
		if err == nil {
			err = gdb.AutoMigrate(&local.Account{})
		}
	default:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open database: %w", err)
	}
	return gdb, cfg.BcryptCost, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
