// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para o serviço de participação.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marcelojr/participacao-mesas/internal/app/participacao"
	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/antifraude"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	"github.com/marcelojr/participacao-mesas/internal/platform/metrics"
)

// API empacota handlers HTTP ligados ao serviço de participação e ao logger.
type API struct {
	service domain.ParticipacaoService
	logger  *slog.Logger
}

func New(service domain.ParticipacaoService, log *slog.Logger) *API {
	return &API{service: service, logger: logger.Ou(log)}
}

func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/sessoes", a.iniciarTurno).Methods(http.MethodPost)
	r.HandleFunc("/sessoes/{sessao}", a.encerrarTurno).Methods(http.MethodDelete)
	r.HandleFunc("/sessoes/{sessao}/votos", a.registrarVotos).Methods(http.MethodPost)
	r.HandleFunc("/sessoes/{sessao}/votos", a.historico).Methods(http.MethodGet)
	r.HandleFunc("/sessoes/{sessao}/encerramento", a.encerrarMesa).Methods(http.MethodPost)
	r.HandleFunc("/mesas/{escola}/{mesa}", a.parcial).Methods(http.MethodGet)
	r.HandleFunc("/escolas/{escola}/painel", a.painelEscola).Methods(http.MethodGet)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type turnoRequest struct {
	MesarioID string `json:"mesario_id"`
	Escola    string `json:"escola"`
	Numero    string `json:"numero_mesa"`
}

type turnoResponse struct {
	Sessao       domain.Sessao       `json:"sessao"`
	Participacao domain.Participacao `json:"participacao"`
}

func (a *API) iniciarTurno(w http.ResponseWriter, r *http.Request) {
	var req turnoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn("payload invalido ao iniciar turno", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	mesa := domain.Mesa{Escola: req.Escola, Numero: req.Numero}.Normalizada()
	sessao, p, err := a.service.IniciarTurno(r.Context(), req.MesarioID, mesa)
	if err != nil {
		a.logger.Warn("falha ao iniciar turno", "err", err, "escola", mesa.Escola, "mesa", mesa.Numero)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusCreated, turnoResponse{Sessao: sessao, Participacao: p})
}

func (a *API) encerrarTurno(w http.ResponseWriter, r *http.Request) {
	id := domain.SessaoID(mux.Vars(r)["sessao"])
	if err := a.service.EncerrarTurno(r.Context(), id); err != nil {
		a.logger.Error("erro ao encerrar turno", "err", err, "sessao", id)
		responderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessao resolve a sessão do caminho; em falha a resposta já foi escrita.
func (a *API) sessao(w http.ResponseWriter, r *http.Request) (*domain.Sessao, bool) {
	id := domain.SessaoID(mux.Vars(r)["sessao"])
	sessao, err := a.service.ResolverSessao(r.Context(), id)
	if err != nil {
		responderErro(w, err)
		return nil, false
	}
	return sessao, true
}

type votosRequest struct {
	Quantidade        json.Number `json:"quantidade"`
	ChaveIdempotencia string      `json:"chave_idempotencia"`
}

func (a *API) registrarVotos(w http.ResponseWriter, r *http.Request) {
	var req votosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveSubmissao("invalid_payload")
		a.logger.Warn("payload invalido ao registrar votos", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	// Só inteiros chegam ao núcleo; "2.5", "1e3" ou texto param aqui.
	quantidade, err := req.Quantidade.Int64()
	if err != nil {
		metrics.ObserveSubmissao("invalid_payload")
		responderErro(w, domain.ErrDeltaInvalido)
		return
	}

	chave := req.ChaveIdempotencia
	if chave == "" {
		chave = r.Header.Get("Idempotency-Key")
	}

	sessao, ok := a.sessao(w, r)
	if !ok {
		metrics.ObserveSubmissao("unauthorized")
		return
	}

	res, err := a.service.RegistrarVotos(r.Context(), sessao, domain.Submissao{
		Quantidade:        quantidade,
		ChaveIdempotencia: chave,
	})
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveSubmissao(status)
		a.logger.Warn("falha ao registrar votos",
			"err", err,
			"sessao", sessao.ID,
			"escola", sessao.Mesa.Escola,
			"mesa", sessao.Mesa.Numero,
			"status", status,
		)
		responderErro(w, err)
		return
	}

	if res.Reenvio {
		metrics.ObserveSubmissao("replay")
		responderJSON(w, http.StatusOK, res)
		return
	}

	metrics.ObserveSubmissao("accepted")
	responderJSON(w, http.StatusCreated, res)
	a.logger.Info("votos registrados",
		"sessao", sessao.ID,
		"escola", sessao.Mesa.Escola,
		"mesa", sessao.Mesa.Numero,
		"quantidade", quantidade,
		"total", res.TotalVotaram,
	)
}

func (a *API) historico(w http.ResponseWriter, r *http.Request) {
	limite := 0
	if raw := r.URL.Query().Get("limite"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limite invalido", http.StatusBadRequest)
			return
		}
		limite = v
	}

	sessao, ok := a.sessao(w, r)
	if !ok {
		return
	}

	registros, err := a.service.Historico(r.Context(), sessao, limite)
	if err != nil {
		a.logger.Error("erro ao listar historico", "err", err, "sessao", sessao.ID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, registros)
}

func (a *API) encerrarMesa(w http.ResponseWriter, r *http.Request) {
	sessao, ok := a.sessao(w, r)
	if !ok {
		return
	}

	res, err := a.service.EncerrarMesa(r.Context(), sessao)
	if err != nil {
		a.logger.Error("erro ao encerrar mesa", "err", err, "sessao", sessao.ID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, res)
}

func (a *API) parcial(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mesa := domain.Mesa{Escola: vars["escola"], Numero: vars["mesa"]}.Normalizada()

	res, err := a.service.Parcial(r.Context(), mesa)
	if err != nil {
		if statusHTTP(err) == http.StatusInternalServerError {
			a.logger.Error("erro ao obter parcial", "err", err, "escola", mesa.Escola, "mesa", mesa.Numero)
		}
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, res)
}

func (a *API) painelEscola(w http.ResponseWriter, r *http.Request) {
	escola := mux.Vars(r)["escola"]

	resumo, err := a.service.PainelEscola(r.Context(), escola)
	if err != nil {
		a.logger.Error("erro ao obter painel", "err", err, "escola", escola)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, resumo)
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderErro(w http.ResponseWriter, err error) {
	responderJSON(w, statusHTTP(err), map[string]string{"erro": err.Error()})
}

func statusHTTP(err error) int {
	switch {
	case errors.Is(err, domain.ErrDeltaInvalido),
		errors.Is(err, domain.ErrMesaInvalida),
		errors.Is(err, domain.ErrChaveIdempotenciaObrigatoria),
		errors.Is(err, domain.ErrChaveIdempotenciaInvalida):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessaoInvalida):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEleitoradoNaoEncontrado),
		errors.Is(err, domain.ErrParticipacaoNaoEncontrada):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMesaEncerrada),
		errors.Is(err, domain.ErrConflitoIdempotencia):
		return http.StatusConflict
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, participacao.ErrPainelIndisponivel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, domain.ErrMesaEncerrada):
		return "closed"
	case errors.Is(err, domain.ErrConflitoIdempotencia):
		return "conflict"
	case errors.Is(err, domain.ErrSessaoInvalida):
		return "unauthorized"
	case errors.Is(err, domain.ErrEleitoradoNaoEncontrado),
		errors.Is(err, domain.ErrParticipacaoNaoEncontrada):
		return "not_found"
	case statusHTTP(err) == http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}
