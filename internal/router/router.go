package router

import (
	"time"

	"gestaogado/internal/config"
	"gestaogado/internal/handler"
	"gestaogado/internal/infra"
	"gestaogado/internal/middleware"
	"gestaogado/internal/repository"
	"gestaogado/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer shared by the HTTP router and the scheduler.
type Services struct {
	Auth          service.AuthService
	Usuarios      service.UsuarioService
	Lotes         service.LoteService
	Bois          service.BoiService
	Pesos         service.PesoService
	Vendas        service.VendaService
	Relatorios    service.RelatorioService
	Notificacoes  service.NotificacaoService
	Configuracoes service.ConfiguracaoService
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB; cache and jobs may be nil-backed.
func NewServices(cfg *config.Config, db *gorm.DB, cache *infra.Cache, jobs service.JobDispatcher) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	loteRepo := repository.NewLoteRepository(db)
	boiRepo := repository.NewBoiRepository(db)
	pesoRepo := repository.NewPesoRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	notificacaoRepo := repository.NewNotificacaoRepository(db)
	configRepo := repository.NewConfiguracaoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	return &Services{
		Auth:          service.NewAuthService(usuarioRepo, cfg, jobs),
		Usuarios:      service.NewUsuarioService(usuarioRepo),
		Lotes:         service.NewLoteService(loteRepo, boiRepo, pesoRepo, vendaRepo, configRepo, cache),
		Bois:          service.NewBoiService(boiRepo, loteRepo, pesoRepo, cache),
		Pesos:         service.NewPesoService(pesoRepo, boiRepo, loteRepo, cache),
		Vendas:        service.NewVendaService(vendaRepo, loteRepo, boiRepo, usuarioRepo, jobs, cache),
		Relatorios:    service.NewRelatorioService(vendaRepo, loteRepo, configRepo, cache),
		Notificacoes:  service.NewNotificacaoService(notificacaoRepo, usuarioRepo, loteRepo, boiRepo, configRepo, webhookJobs(cfg, jobs)),
		Configuracoes: service.NewConfiguracaoService(configRepo, cache),
	}
}

// webhookJobs hides the dispatcher from the notification service when no
// WEBHOOK_URL is configured, so no webhook job is ever queued.
func webhookJobs(cfg *config.Config, jobs service.JobDispatcher) service.JobDispatcher {
	if cfg.WebhookURL == "" {
		return nil
	}
	return jobs
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services, breakers ...*infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth, handler.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure})
	usuariosH := handler.NewUsuariosHandler(svcs.Usuarios)
	lotesH := handler.NewLotesHandler(svcs.Lotes, svcs.Bois, svcs.Pesos)
	boisH := handler.NewBoisHandler(svcs.Bois, svcs.Pesos)
	pesosH := handler.NewPesosHandler(svcs.Pesos)
	vendasH := handler.NewVendasHandler(svcs.Vendas)
	relatoriosH := handler.NewRelatoriosHandler(svcs.Relatorios)
	notificacoesH := handler.NewNotificacoesHandler(svcs.Notificacoes)
	configH := handler.NewConfiguracoesHandler(svcs.Configuracoes)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, breakers...))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret, cfg.CookieName)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/logout", authH.Logout)
		auth.POST("/esqueci-senha", middleware.LoginRateLimiter(), authH.EsqueciSenha)
		auth.POST("/redefinir-senha", middleware.LoginRateLimiter(), authH.RedefinirSenha)
		auth.GET("/me", jwtMW, authH.Me)
	}

	adm := r.Group("/v1/adm", jwtMW, middleware.RequireAdmin())
	{
		lotes := adm.Group("/lotes")
		{
			lotes.POST("", lotesH.Criar)
			lotes.GET("", lotesH.Listar)
			lotes.GET("/:id", lotesH.Obter)
			lotes.PUT("/:id", lotesH.Atualizar)
			lotes.DELETE("/:id", lotesH.Excluir)
			lotes.POST("/:id/vacinacao", lotesH.RegistrarVacinacao)
			lotes.GET("/:id/bois", lotesH.ListarBois)
			lotes.GET("/:id/pesos", lotesH.ListarPesos)
		}

		bois := adm.Group("/bois")
		{
			bois.POST("", boisH.Criar)
			bois.GET("/:id", boisH.Obter)
			bois.PUT("/:id", boisH.Atualizar)
			bois.DELETE("/:id", boisH.Excluir)
			bois.GET("/:id/pesos", boisH.ListarPesos)
			bois.POST("/:id/pesos", boisH.RegistrarPeso)
		}

		adm.PUT("/pesos/:id", pesosH.Atualizar)
		adm.DELETE("/pesos/:id", pesosH.Excluir)

		vendas := adm.Group("/vendas")
		{
			vendas.POST("", vendasH.Registrar)
			vendas.GET("", vendasH.Listar)
			vendas.GET("/:id", vendasH.Obter)
			vendas.POST("/:id/cancelar", vendasH.Cancelar)
			vendas.GET("/:id/pdf", vendasH.PDF)
		}

		relatorios := adm.Group("/relatorios")
		{
			relatorios.GET("/vendas", relatoriosH.Vendas)
			relatorios.GET("/lucro", relatoriosH.Lucro)
			relatorios.GET("/dashboard", relatoriosH.Dashboard)
		}

		usuarios := adm.Group("/usuarios")
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.GET("/:id", usuariosH.Obter)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
		}

		configuracoes := adm.Group("/configuracoes")
		{
			configuracoes.GET("", configH.Listar)
			configuracoes.GET("/:chave", configH.Obter)
			configuracoes.PUT("/:chave", configH.Atualizar)
		}

		notificacaoRoutes(adm.Group("/notificacoes"), notificacoesH)
	}

	// Admins are let into the field screens as well.
	peao := r.Group("/v1/peao", jwtMW, middleware.RequirePeao())
	{
		peao.GET("/lotes", lotesH.Listar)
		peao.GET("/lotes/:id", lotesH.Obter)
		peao.GET("/lotes/:id/bois", lotesH.ListarBois)
		peao.POST("/lotes/:id/vacinacao", lotesH.RegistrarVacinacao)

		peao.GET("/bois/:id", boisH.Obter)
		peao.PUT("/bois/:id/alerta", boisH.DefinirAlerta)
		peao.GET("/bois/:id/pesos", boisH.ListarPesos)
		peao.POST("/bois/:id/pesos", boisH.RegistrarPeso)

		notificacaoRoutes(peao.Group("/notificacoes"), notificacoesH)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func notificacaoRoutes(g *gin.RouterGroup, h *handler.NotificacoesHandler) {
	g.GET("", h.Listar)
	g.GET("/enviadas", h.Enviadas)
	g.GET("/nao-lidas", h.NaoLidas)
	g.GET("/:id/thread", h.Thread)
	g.POST("", h.Enviar)
	g.POST("/:id/responder", h.Responder)
	g.PATCH("/:id/lida", h.MarcarLida)
	g.DELETE("/:id", h.Excluir)
}
