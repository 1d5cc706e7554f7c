// seeduser cria ou atualiza o administrador inicial.
// Uso: go run ./cmd/seeduser -email admin@fazenda.local -senha trocar123
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"gestaogado/internal/config"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@gestaogado.local", "e-mail do administrador")
	senha := flag.String("senha", "admin1234", "senha inicial")
	nome := flag.String("nome", "Administrador", "nome exibido")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*senha), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (nome, email, password_hash, rol, ativo, created_at, updated_at)
		VALUES (?, ?, ?, ?, true, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nome = EXCLUDED.nome,
		    rol = EXCLUDED.rol,
		    ativo = true,
		    updated_at = NOW()
	`, *nome, strings.ToLower(*email), string(hash), model.RolAdmin)

	if result.Error != nil {
		log.Fatalf("insert error: %v", result.Error)
	}
	fmt.Printf("Usuario '%s' criado/atualizado com a senha informada\n", *email)
}
