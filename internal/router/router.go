package router

import (
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/config"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/handler"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/middleware"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	linhaRepo := repository.NewLinhaCreditoRepository(db)
	recebivelRepo := repository.NewRecebivelRepository(db)
	antecipacaoRepo := repository.NewAntecipacaoRepository(db)
	planoRepo := repository.NewPlanoRepository(db)
	cobrancaRepo := repository.NewCobrancaRepository(db)
	boletoRepo := repository.NewBoletoRepository(db)
	indiceRepo := repository.NewIndiceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	creditoSvc := service.NewCreditoService(linhaRepo)
	recebivelSvc := service.NewRecebivelService(recebivelRepo)
	antecipacaoSvc := service.NewAntecipacaoService(antecipacaoRepo, recebivelRepo, creditoSvc)
	parcelaSvc := service.NewParcelaService(planoRepo, cobrancaRepo, recebivelRepo, antecipacaoRepo, cfg.PermitirPmtComoCobranca)
	indiceSvc := service.NewIndiceService(indiceRepo)
	boletoSvc := service.NewBoletoService(boletoRepo, cobrancaRepo, indiceSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	creditoH := handler.NewCreditoHandler(creditoSvc)
	recebiveisH := handler.NewRecebiveisHandler(recebivelSvc)
	antecipacoesH := handler.NewAntecipacoesHandler(antecipacaoSvc)
	parcelasH := handler.NewParcelasHandler(parcelaSvc)
	boletosH := handler.NewBoletosHandler(boletoSvc)
	indicesH := handler.NewIndicesHandler(indiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Linhas de crédito — operador manages, all roles can consult
		v1.POST("/linhas-credito", middleware.RequireRole(middleware.RolOperador), creditoH.CriarLinha)
		v1.POST("/linhas-credito/:id/ativar", middleware.RequireRole(middleware.RolOperador), creditoH.AtivarLinha)
		v1.GET("/construtoras/:construtora_id/linha-ativa", creditoH.LinhaAtiva)
		v1.GET("/construtoras/:construtora_id/linhas-credito", creditoH.ListarLinhas)

		// Recebíveis — construtora submits, operador evaluates
		v1.POST("/recebiveis", middleware.RequireRole(middleware.RolConstrutora, middleware.RolOperador), recebiveisH.Cadastrar)
		v1.GET("/recebiveis", recebiveisH.Listar)
		v1.GET("/recebiveis/:id", recebiveisH.Buscar)
		v1.POST("/recebiveis/:id/avaliacao", middleware.RequireRole(middleware.RolOperador), recebiveisH.Avaliar)
		v1.POST("/recebiveis/:id/pagamento", middleware.RequireRole(middleware.RolOperador), recebiveisH.MarcarPago)

		// Antecipações — construtora requests, aprovador decides
		v1.POST("/antecipacoes/simulacao", antecipacoesH.Simular)
		v1.POST("/antecipacoes", middleware.RequireRole(middleware.RolConstrutora, middleware.RolOperador), antecipacoesH.Solicitar)
		v1.GET("/antecipacoes", antecipacoesH.Listar)
		v1.GET("/antecipacoes/:id", antecipacoesH.Buscar)
		v1.POST("/antecipacoes/:id/status", middleware.RequireRole(middleware.RolAprovador), antecipacoesH.Transicionar)
		v1.GET("/antecipacoes/:id/plano-pagamento", parcelasH.PlanoDaAntecipacao)

		// Planos de pagamento e conciliação — operador
		planos := v1.Group("", middleware.RequireRole(middleware.RolOperador, middleware.RolAprovador))
		{
			planos.POST("/planos-pagamento", parcelasH.CriarPlano)
			planos.GET("/planos-pagamento/:id", parcelasH.BuscarPlano)
			planos.GET("/parcelas/:id/fontes", parcelasH.Fontes)
			planos.GET("/parcelas/:id/candidatos-cobranca", parcelasH.Candidatos)
			planos.POST("/parcelas/:id/cobrancas", parcelasH.VincularCobranca)
			planos.DELETE("/parcelas/:id/cobrancas/:vinculo_id", parcelasH.DesvincularCobranca)
			planos.GET("/parcelas/:id/resumo-conciliacao", parcelasH.Resumo)
		}

		// Boletos — operador
		boletos := v1.Group("/boletos", middleware.RequireRole(middleware.RolOperador))
		{
			boletos.POST("", boletosH.Criar)
			boletos.GET("/:id", boletosH.Buscar)
			boletos.GET("/:id/pdf", boletosH.PDF)
			boletos.POST("/:id/emissao", boletosH.Emitir)
			boletos.POST("/:id/cancelamento", boletosH.Cancelar)
			boletos.POST("/:id/pagamento", boletosH.RegistrarPagamento)
		}

		// Índices econômicos — operador writes, all roles read
		v1.GET("/indices", indicesH.Listar)
		v1.GET("/indices/:id/correcao", indicesH.Correcao)
		indices := v1.Group("/indices", middleware.RequireRole(middleware.RolOperador))
		{
			indices.POST("", indicesH.Criar)
			indices.POST("/:id/atualizacoes", indicesH.RegistrarAtualizacao)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
