package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gestaogado/internal/config"
	"gestaogado/internal/dto"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"
	"gestaogado/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a var so tests can lower it.
var bcryptCost = 12

const resetTokenTTL = time.Hour

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UsuarioResponse, error)
	SolicitarReset(ctx context.Context, req dto.EsqueciSenhaRequest) error
	RedefinirSenha(ctx context.Context, req dto.RedefinirSenhaRequest) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
	jobs JobDispatcher
	now  func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, jobs JobDispatcher) AuthService {
	return &authService{repo: repo, cfg: cfg, jobs: jobs, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil || !user.Ativo {
		return nil, falha(ErrCredenciais, "email ou senha invalidos")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Senha)); err != nil {
		return nil, falha(ErrCredenciais, "email ou senha invalidos")
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := s.generateToken(user, ttl)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Str("rol", user.Rol).Msg("login")
	return &dto.LoginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(ttl.Seconds()),
		User:      usuarioToResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, naoEncontrado(err, "usuario nao encontrado")
	}
	if !user.Ativo {
		return nil, falha(ErrTokenInvalido, "usuario inativo")
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

// SolicitarReset never reveals whether the e-mail exists: unknown or inactive
// accounts return nil without side effects.
func (s *authService) SolicitarReset(ctx context.Context, req dto.EsqueciSenhaRequest) error {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil || !user.Ativo {
		log.Debug().Str("email", req.Email).Msg("reset solicitado para email desconhecido")
		return nil
	}

	token, err := novoTokenReset()
	if err != nil {
		return err
	}
	hash := hashToken(token)
	expira := s.now().Add(resetTokenTTL)
	user.ResetToken = &hash
	user.ResetExpiraEm = &expira
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if s.jobs == nil {
		log.Warn().Str("user_id", user.ID.String()).Msg("reset: no job dispatcher, e-mail not sent")
		return nil
	}
	link := fmt.Sprintf("%s/redefinir-senha?token=%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
	job := worker.EmailJobPayload{
		ToEmail: user.Email,
		Subject: "Redefinicao de senha",
		Body: fmt.Sprintf("Ola %s,\n\nPara redefinir sua senha acesse:\n%s\n\nO link expira em 1 hora.",
			user.Nome, link),
	}
	if err := s.jobs.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("reset: failed to enqueue e-mail")
	}
	return nil
}

func (s *authService) RedefinirSenha(ctx context.Context, req dto.RedefinirSenhaRequest) error {
	user, err := s.repo.FindByResetToken(ctx, hashToken(req.Token))
	if err != nil {
		return falha(ErrTokenInvalido, "token de redefinicao invalido")
	}
	if user.ResetExpiraEm == nil || s.now().After(*user.ResetExpiraEm) {
		return falha(ErrTokenInvalido, "token de redefinicao expirado")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NovaSenha), bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.ResetToken = nil
	user.ResetExpiraEm = nil
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("senha redefinida")
	return nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"nome":    user.Nome,
		"rol":     user.Rol,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func novoTokenReset() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{ID: u.ID.String(), Nome: u.Nome, Email: u.Email, Rol: u.Rol, Ativo: u.Ativo}
}
