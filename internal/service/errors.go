package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors the handlers translate into HTTP status codes.
var (
	ErrNaoEncontrado  = errors.New("registro nao encontrado")
	ErrLoteJaVendido  = errors.New("lote ja vendido")
	ErrCredenciais    = errors.New("credenciais invalidas")
	ErrTokenInvalido  = errors.New("token invalido ou expirado")
	ErrConflito       = errors.New("conflito")
	ErrDadosInvalidos = errors.New("dados invalidos")
)

// erroNegocio carries a user-facing message while still matching its sentinel
// through errors.Is.
type erroNegocio struct {
	kind error
	msg  string
}

func (e *erroNegocio) Error() string { return e.msg }
func (e *erroNegocio) Unwrap() error { return e.kind }

func falha(kind error, msg string) error {
	return &erroNegocio{kind: kind, msg: msg}
}

// naoEncontrado maps gorm.ErrRecordNotFound to ErrNaoEncontrado with msg and
// passes any other error through untouched.
func naoEncontrado(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return falha(ErrNaoEncontrado, msg)
	}
	return err
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
