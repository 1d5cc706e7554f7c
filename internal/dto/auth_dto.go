package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=4"`
}

type EsqueciSenhaRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RedefinirSenhaRequest struct {
	Token     string `json:"token"      validate:"required"`
	NovaSenha string `json:"nova_senha" validate:"required,min=8"`
}

type CriarUsuarioRequest struct {
	Nome  string `json:"nome"  validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=8"`
	Rol   string `json:"rol"   validate:"required,oneof=admin peao"`
}

type AtualizarUsuarioRequest struct {
	Nome  *string `json:"nome"  validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Rol   *string `json:"rol"   validate:"omitempty,oneof=admin peao"`
	Senha *string `json:"senha" validate:"omitempty,min=8"`
	Ativo *bool   `json:"ativo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Rol   string `json:"rol"`
	Ativo bool   `json:"ativo"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresIn int             `json:"expires_in"` // seconds
	User      UsuarioResponse `json:"user"`
}
