package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories shared by the service tests. DB() returns nil so
// runTx executes the transactional closures directly. The stubs touched by
// the concurrent approval tests are mutex-guarded and hand out copies, the
// way a real connection hands out detached rows.

// ── LinhaCreditoRepository ───────────────────────────────────────────────────

type stubLinhaRepo struct {
	mu     sync.Mutex
	linhas map[uuid.UUID]*model.LinhaCredito
}

func newStubLinhaRepo() *stubLinhaRepo {
	return &stubLinhaRepo{linhas: make(map[uuid.UUID]*model.LinhaCredito)}
}

func (r *stubLinhaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LinhaCredito, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.linhas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLinhaRepo) FindAtiva(_ context.Context, construtoraID uuid.UUID) (*model.LinhaCredito, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.linhas {
		if l.ConstrutoraID == construtoraID && l.Status == model.LinhaAtiva {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLinhaRepo) ListByConstrutora(_ context.Context, construtoraID uuid.UUID) ([]model.LinhaCredito, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LinhaCredito
	for _, l := range r.linhas {
		if l.ConstrutoraID == construtoraID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLinhaRepo) CriarAtivandoTx(_ *gorm.DB, linha *model.LinhaCredito) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.linhas {
		if l.ConstrutoraID == linha.ConstrutoraID && l.Status == model.LinhaAtiva {
			l.Status = model.LinhaInativa
		}
	}
	if linha.ID == uuid.Nil {
		linha.ID = uuid.New()
	}
	linha.Status = model.LinhaAtiva
	r.linhas[linha.ID] = linha
	return nil
}

func (r *stubLinhaRepo) AtivarTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	alvo, ok := r.linhas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, l := range r.linhas {
		if l.ConstrutoraID == alvo.ConstrutoraID && l.Status == model.LinhaAtiva {
			l.Status = model.LinhaInativa
		}
	}
	alvo.Status = model.LinhaAtiva
	return nil
}

// ConsumirTx mirrors the guarded UPDATE: the limit predicate and the
// increment are evaluated as one step, zero rows when it fails.
func (r *stubLinhaRepo) ConsumirTx(_ *gorm.DB, construtoraID uuid.UUID, valor decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.linhas {
		if l.ConstrutoraID == construtoraID && l.Status == model.LinhaAtiva {
			if l.CreditoConsumido.Add(valor).GreaterThan(l.LimiteCredito) {
				return 0, nil
			}
			l.CreditoConsumido = l.CreditoConsumido.Add(valor)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubLinhaRepo) DB() *gorm.DB { return nil }

var _ repository.LinhaCreditoRepository = (*stubLinhaRepo)(nil)

// ── RecebivelRepository ──────────────────────────────────────────────────────

type stubRecebivelRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*model.Recebivel

	// cobrancas, when set, lets ListCandidatosCobranca honor attachment
	// exclusions the SQL implementation resolves via subqueries.
	cobrancas *stubCobrancaRepo
}

func newStubRecebivelRepo() *stubRecebivelRepo {
	return &stubRecebivelRepo{recs: make(map[uuid.UUID]*model.Recebivel)}
}

func (r *stubRecebivelRepo) add(rec *model.Recebivel) *model.Recebivel {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.recs[rec.ID] = rec
	return rec
}

func (r *stubRecebivelRepo) CreateBatch(_ context.Context, recs []model.Recebivel) error {
	for i := range recs {
		if recs[i].ID == uuid.Nil {
			recs[i].ID = uuid.New()
		}
		cp := recs[i]
		r.recs[cp.ID] = &cp
	}
	return nil
}

func (r *stubRecebivelRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Recebivel, error) {
	rec, ok := r.recs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubRecebivelRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Recebivel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Recebivel
	for _, id := range ids {
		if rec, ok := r.recs[id]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubRecebivelRepo) List(_ context.Context, filter dto.RecebivelFilter) ([]model.Recebivel, int64, error) {
	var out []model.Recebivel
	for _, rec := range r.recs {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.ConstrutoraID != "" && rec.ConstrutoraID.String() != filter.ConstrutoraID {
			continue
		}
		if filter.ObraID != "" && rec.ObraID.String() != filter.ObraID {
			continue
		}
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (r *stubRecebivelRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	rec, ok := r.recs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Status = status
	return nil
}

func (r *stubRecebivelRepo) UpdateStatusTx(_ *gorm.DB, ids []uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if rec, ok := r.recs[id]; ok {
			rec.Status = status
		}
	}
	return nil
}

func (r *stubRecebivelRepo) ListCandidatosCobranca(_ context.Context, obraID uuid.UUID, excluirPmtDaParcela *uuid.UUID) ([]model.Recebivel, error) {
	var out []model.Recebivel
	for _, rec := range r.recs {
		if rec.ObraID != obraID || rec.Status != model.RecebivelApto {
			continue
		}
		if r.cobrancas != nil {
			if r.cobrancas.attachedAsCobranca(rec.ID) {
				continue
			}
			if excluirPmtDaParcela != nil && r.cobrancas.isPmtOfParcela(*excluirPmtDaParcela, rec.ID) {
				continue
			}
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *stubRecebivelRepo) DB() *gorm.DB { return nil }

var _ repository.RecebivelRepository = (*stubRecebivelRepo)(nil)

// ── AntecipacaoRepository ────────────────────────────────────────────────────

type stubAntecipacaoRepo struct {
	mu           sync.Mutex
	antecipacoes map[uuid.UUID]*model.Antecipacao
}

func newStubAntecipacaoRepo() *stubAntecipacaoRepo {
	return &stubAntecipacaoRepo{antecipacoes: make(map[uuid.UUID]*model.Antecipacao)}
}

func (r *stubAntecipacaoRepo) Create(_ context.Context, a *model.Antecipacao) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for i := range a.Recebiveis {
		if a.Recebiveis[i].ID == uuid.Nil {
			a.Recebiveis[i].ID = uuid.New()
		}
		a.Recebiveis[i].AntecipacaoID = a.ID
	}
	r.antecipacoes[a.ID] = a
	return nil
}

func (r *stubAntecipacaoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Antecipacao, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.antecipacoes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAntecipacaoRepo) List(_ context.Context, filter dto.AntecipacaoFilter) ([]model.Antecipacao, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Antecipacao
	for _, a := range r.antecipacoes {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.ConstrutoraID != "" && a.ConstrutoraID.String() != filter.ConstrutoraID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

// UpdateStatusTx mirrors the guarded UPDATE: zero rows when the row no
// longer holds the expected source status.
func (r *stubAntecipacaoRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, de, para string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.antecipacoes[id]
	if !ok || a.Status != de {
		return 0, nil
	}
	a.Status = para
	return 1, nil
}

func (r *stubAntecipacaoRepo) RecebiveisVinculados(_ context.Context, recebivelIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vivos := make(map[uuid.UUID]bool)
	for _, a := range r.antecipacoes {
		if a.Status == model.AntecipacaoRecusada {
			continue
		}
		for i := range a.Recebiveis {
			vivos[a.Recebiveis[i].RecebivelID] = true
		}
	}
	var out []uuid.UUID
	for _, id := range recebivelIDs {
		if vivos[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *stubAntecipacaoRepo) DB() *gorm.DB { return nil }

var _ repository.AntecipacaoRepository = (*stubAntecipacaoRepo)(nil)

// ── PlanoRepository ──────────────────────────────────────────────────────────

type stubPlanoRepo struct {
	planos        map[uuid.UUID]*model.PlanoPagamento
	parcelas      map[uuid.UUID]*model.Parcela
	byAntecipacao map[uuid.UUID]uuid.UUID
	pmts          []model.RecebivelPmt
}

func newStubPlanoRepo() *stubPlanoRepo {
	return &stubPlanoRepo{
		planos:        make(map[uuid.UUID]*model.PlanoPagamento),
		parcelas:      make(map[uuid.UUID]*model.Parcela),
		byAntecipacao: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *stubPlanoRepo) CreateTx(_ *gorm.DB, plano *model.PlanoPagamento, pmts []model.RecebivelPmt) error {
	if _, existe := r.byAntecipacao[plano.AntecipacaoID]; existe {
		return gorm.ErrDuplicatedKey
	}
	if plano.ID == uuid.Nil {
		plano.ID = uuid.New()
	}
	for i := range plano.Parcelas {
		plano.Parcelas[i].PlanoID = plano.ID
		p := plano.Parcelas[i]
		r.parcelas[p.ID] = &p
	}
	r.planos[plano.ID] = plano
	r.byAntecipacao[plano.AntecipacaoID] = plano.ID
	for i := range pmts {
		if pmts[i].ID == uuid.Nil {
			pmts[i].ID = uuid.New()
		}
		r.pmts = append(r.pmts, pmts[i])
	}
	return nil
}

func (r *stubPlanoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PlanoPagamento, error) {
	p, ok := r.planos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPlanoRepo) FindByAntecipacao(_ context.Context, antecipacaoID uuid.UUID) (*model.PlanoPagamento, error) {
	id, ok := r.byAntecipacao[antecipacaoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.planos[id], nil
}

func (r *stubPlanoRepo) FindParcela(_ context.Context, parcelaID uuid.UUID) (*model.Parcela, error) {
	p, ok := r.parcelas[parcelaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Return a detached copy, like a real repository: callers mutating the
	// result must not alias the stored row.
	cp := *p
	return &cp, nil
}

func (r *stubPlanoRepo) PlanoDaParcela(_ context.Context, parcelaID uuid.UUID) (*model.PlanoPagamento, error) {
	p, ok := r.parcelas[parcelaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	plano, ok := r.planos[p.PlanoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plano, nil
}

func (r *stubPlanoRepo) UpdateParcelaTotalTx(_ *gorm.DB, parcelaID uuid.UUID, delta interface{}) error {
	p, ok := r.parcelas[parcelaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.TotalRecebiveis = p.TotalRecebiveis.Add(delta.(decimal.Decimal))
	return nil
}

func (r *stubPlanoRepo) DB() *gorm.DB { return nil }

var _ repository.PlanoRepository = (*stubPlanoRepo)(nil)

// ── CobrancaRepository ───────────────────────────────────────────────────────

type stubCobrancaRepo struct {
	vinculos map[uuid.UUID]*model.RecebivelCobranca
	pmts     []model.RecebivelPmt
}

func newStubCobrancaRepo() *stubCobrancaRepo {
	return &stubCobrancaRepo{vinculos: make(map[uuid.UUID]*model.RecebivelCobranca)}
}

func (r *stubCobrancaRepo) attachedAsCobranca(recebivelID uuid.UUID) bool {
	for _, v := range r.vinculos {
		if v.RecebivelID == recebivelID {
			return true
		}
	}
	return false
}

func (r *stubCobrancaRepo) isPmtOfParcela(parcelaID, recebivelID uuid.UUID) bool {
	for i := range r.pmts {
		if r.pmts[i].ParcelaID == parcelaID && r.pmts[i].RecebivelID == recebivelID {
			return true
		}
	}
	return false
}

func (r *stubCobrancaRepo) CreateTx(_ *gorm.DB, rc *model.RecebivelCobranca) error {
	if r.attachedAsCobranca(rc.RecebivelID) {
		return gorm.ErrDuplicatedKey
	}
	if rc.ID == uuid.Nil {
		rc.ID = uuid.New()
	}
	r.vinculos[rc.ID] = rc
	return nil
}

func (r *stubCobrancaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecebivelCobranca, error) {
	rc, ok := r.vinculos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rc, nil
}

func (r *stubCobrancaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.vinculos, id)
	return nil
}

func (r *stubCobrancaRepo) ListPmtByParcela(_ context.Context, parcelaID uuid.UUID) ([]model.RecebivelPmt, error) {
	var out []model.RecebivelPmt
	for i := range r.pmts {
		if r.pmts[i].ParcelaID == parcelaID {
			out = append(out, r.pmts[i])
		}
	}
	return out, nil
}

func (r *stubCobrancaRepo) ListCobrancaByParcela(_ context.Context, parcelaID uuid.UUID) ([]model.RecebivelCobranca, error) {
	var out []model.RecebivelCobranca
	for _, v := range r.vinculos {
		if v.ParcelaID == parcelaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubCobrancaRepo) DB() *gorm.DB { return nil }

var _ repository.CobrancaRepository = (*stubCobrancaRepo)(nil)

// ── BoletoRepository ─────────────────────────────────────────────────────────

type stubBoletoRepo struct {
	boletos map[uuid.UUID]*model.Boleto
}

func newStubBoletoRepo() *stubBoletoRepo {
	return &stubBoletoRepo{boletos: make(map[uuid.UUID]*model.Boleto)}
}

// Create mirrors the partial unique index on recebivel_cobranca_id: only a
// non-cancelado boleto blocks a new one.
func (r *stubBoletoRepo) Create(_ context.Context, b *model.Boleto) error {
	for _, existente := range r.boletos {
		if existente.RecebivelCobrancaID == b.RecebivelCobrancaID && existente.StatusEmissao != model.BoletoCancelado {
			return gorm.ErrDuplicatedKey
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.boletos[b.ID] = b
	return nil
}

func (r *stubBoletoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Boleto, error) {
	b, ok := r.boletos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBoletoRepo) FindByCobranca(_ context.Context, recebivelCobrancaID uuid.UUID) (*model.Boleto, error) {
	for _, b := range r.boletos {
		if b.RecebivelCobrancaID == recebivelCobrancaID && b.StatusEmissao != model.BoletoCancelado {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBoletoRepo) Update(_ context.Context, b *model.Boleto) error {
	r.boletos[b.ID] = b
	return nil
}

func (r *stubBoletoRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.Boleto, error) {
	var out []model.Boleto
	for _, b := range r.boletos {
		if b.StatusEmissao == model.BoletoCriado && b.ProximaTentativaEm != nil && !b.ProximaTentativaEm.After(now) {
			out = append(out, *b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubBoletoRepo) DB() *gorm.DB { return nil }

var _ repository.BoletoRepository = (*stubBoletoRepo)(nil)

// ── IndiceRepository ─────────────────────────────────────────────────────────

type stubIndiceRepo struct {
	indices      map[uuid.UUID]*model.Indice
	atualizacoes []model.AtualizacaoIndice
}

func newStubIndiceRepo() *stubIndiceRepo {
	return &stubIndiceRepo{indices: make(map[uuid.UUID]*model.Indice)}
}

func (r *stubIndiceRepo) CreateIndice(_ context.Context, i *model.Indice) error {
	for _, existente := range r.indices {
		if existente.Sigla == i.Sigla {
			return gorm.ErrDuplicatedKey
		}
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.indices[i.ID] = i
	return nil
}

func (r *stubIndiceRepo) FindIndice(_ context.Context, id uuid.UUID) (*model.Indice, error) {
	i, ok := r.indices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubIndiceRepo) ListIndices(_ context.Context) ([]model.Indice, error) {
	var out []model.Indice
	for _, i := range r.indices {
		out = append(out, *i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Sigla < out[b].Sigla })
	return out, nil
}

func (r *stubIndiceRepo) CreateAtualizacao(_ context.Context, a *model.AtualizacaoIndice) error {
	mes := model.NormalizarMes(a.MesReferencia)
	for i := range r.atualizacoes {
		if r.atualizacoes[i].IndiceID == a.IndiceID && r.atualizacoes[i].MesReferencia.Equal(mes) {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.MesReferencia = mes
	r.atualizacoes = append(r.atualizacoes, *a)
	return nil
}

func (r *stubIndiceRepo) ListAtualizacoesEntre(_ context.Context, indiceID uuid.UUID, inicio, fim time.Time) ([]model.AtualizacaoIndice, error) {
	ini, f := model.NormalizarMes(inicio), model.NormalizarMes(fim)
	var out []model.AtualizacaoIndice
	for i := range r.atualizacoes {
		a := r.atualizacoes[i]
		if a.IndiceID == indiceID && a.MesReferencia.After(ini) && !a.MesReferencia.After(f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].MesReferencia.Before(out[b].MesReferencia) })
	return out, nil
}

var _ repository.IndiceRepository = (*stubIndiceRepo)(nil)

// ── BoletoDispatcher ─────────────────────────────────────────────────────────

type stubDispatcher struct {
	enfileirados []uuid.UUID
}

func (d *stubDispatcher) EnqueueBoleto(_ context.Context, boletoID uuid.UUID) error {
	d.enfileirados = append(d.enfileirados, boletoID)
	return nil
}

var _ BoletoDispatcher = (*stubDispatcher)(nil)

// ── fixtures ─────────────────────────────────────────────────────────────────

func linhaDemo(construtoraID uuid.UUID) *model.LinhaCredito {
	return &model.LinhaCredito{
		ID:                 uuid.New(),
		ConstrutoraID:      construtoraID,
		TaxaAte180:         decimal.NewFromFloat(2.0),
		TaxaAte360:         decimal.NewFromFloat(2.4),
		TaxaAte720:         decimal.NewFromFloat(2.9),
		TaxaLongoPrazo:     decimal.NewFromFloat(3.5),
		TarifaPorRecebivel: decimal.NewFromInt(50),
		LimiteCredito:      decimal.NewFromInt(500000),
		CreditoConsumido:   decimal.Zero,
		LimiteDiasOperacao: 720,
		Status:             model.LinhaAtiva,
	}
}

func recebivelApto(construtoraID, obraID uuid.UUID, valor int64, venc time.Time) *model.Recebivel {
	return &model.Recebivel{
		ID:              uuid.New(),
		ConstrutoraID:   construtoraID,
		ObraID:          obraID,
		Sacado:          "Comprador Demo",
		SacadoDocumento: "123.456.789-00",
		Valor:           decimal.NewFromInt(valor),
		Vencimento:      venc,
		Status:          model.RecebivelApto,
	}
}
