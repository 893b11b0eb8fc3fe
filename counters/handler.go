package counters

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"counter-gateway/counters/application"
	"counter-gateway/counters/domain"
	"counter-gateway/counters/infra"
)

// API reúne os handlers HTTP do serviço sobre os casos de uso injetados.
// Todos os campos de serviço são obrigatórios; Throttle e Logger são
// opcionais.
type API struct {
	Sessions domain.SessionStore
	Sync     application.SyncService
	Domains  application.DomainService
	Visits   application.VisitService

	// Throttle, quando presente, limita pedidos de sync por usuário+domínio.
	Throttle *infra.SyncThrottle
	// RetryAfter é a recomendação devolvida no 429 do throttle.
	RetryAfter time.Duration

	// TrustXFF habilita X-Forwarded-For como origem do IP do visitante.
	TrustXFF bool

	Logger *log.Logger
}

type syncRequest struct {
	DomainName string `json:"domainName"`
}

type syncResponse struct {
	Synced     bool   `json:"synced"`
	DomainName string `json:"domainName"`
	Message    string `json:"message,omitempty"`

	Counters     *domain.CounterSnapshot `json:"counters,omitempty"`
	SyncedValues *domain.SyncValues      `json:"syncedValues,omitempty"`
	Details      *domain.SyncValues      `json:"details,omitempty"`
}

type domainResponse struct {
	DomainName  string `json:"domainName"`
	Verified    bool   `json:"verified"`
	VerifyToken string `json:"verifyToken,omitempty"`
	// TXTRecord é o registro pronto para o dono colar na zona DNS.
	TXTRecord string `json:"txtRecord,omitempty"`
}

type visitRequest struct {
	DomainName string `json:"domainName"`
	Path       string `json:"path"`
}

type countersResponse struct {
	DomainName string                 `json:"domainName"`
	Counters   domain.CounterSnapshot `json:"counters"`
}

// Routes monta o mux com todas as rotas do serviço.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sync", a.handleSync)
	mux.HandleFunc("POST /api/domains", a.handleRegisterDomain)
	mux.HandleFunc("GET /api/domains", a.handleListDomains)
	mux.HandleFunc("POST /api/domains/verify", a.handleVerifyDomain)
	mux.HandleFunc("GET /api/counters", a.handleCounters)
	mux.HandleFunc("POST /api/visit", a.handleVisit)
	return mux
}

// handleSync é o endpoint de re-sincronização com o Busuanzi.
//
// Respostas:
//   - 200 synced=true: sync completo, counters = estado do armazenamento
//   - 200 synced=false: pedido válido mas fonte externa incompleta/indisponível
//   - 401/400/404: pré-condição falhou
//   - 429: pedidos demais para o mesmo domínio
func (a *API) handleSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if a.Throttle != nil && req.DomainName != "" {
		// A chave inclui o usuário para o throttle de um dono não vazar
		// atividade de sync de outro.
		if !a.Throttle.Allow(userID + ":" + req.DomainName) {
			retry := a.RetryAfter
			if retry <= 0 {
				retry = 30 * time.Second
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
			writeError(w, http.StatusTooManyRequests, "sync requested too often for this domain")
			return
		}
	}

	out, err := a.Sync.RequestSync(r.Context(), userID, req.DomainName)
	if err != nil {
		a.fail(w, r, err, req.DomainName, userID)
		return
	}

	resp := syncResponse{
		Synced:     out.Synced,
		DomainName: out.Domain,
		Message:    out.Message,
	}
	if out.Synced {
		resp.Counters = out.Counters
		resp.SyncedValues = out.SyncedValues
	} else {
		resp.Details = out.Details
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleRegisterDomain(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := a.Domains.Register(r.Context(), userID, req.DomainName)
	if err != nil {
		a.fail(w, r, err, req.DomainName, userID)
		return
	}
	writeJSON(w, http.StatusCreated, newDomainResponse(d))
}

func (a *API) handleVerifyDomain(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := a.Domains.Verify(r.Context(), userID, req.DomainName)
	if err != nil {
		a.fail(w, r, err, req.DomainName, userID)
		return
	}
	writeJSON(w, http.StatusOK, newDomainResponse(d))
}

func (a *API) handleListDomains(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authenticate(w, r)
	if !ok {
		return
	}

	ds, err := a.Domains.List(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err, "", userID)
		return
	}

	out := make([]domainResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, newDomainResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": out})
}

// handleCounters é a leitura pública dos contadores de um domínio verificado.
func (a *API) handleCounters(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("domain")

	snap, err := a.Visits.PublicSnapshot(r.Context(), name)
	if err != nil {
		a.fail(w, r, err, name, "")
		return
	}
	writeJSON(w, http.StatusOK, countersResponse{DomainName: name, Counters: snap})
}

// handleVisit é o caminho público de contagem: registra o acesso e devolve
// o snapshot novo. Sem autenticação.
func (a *API) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	visitorID := application.VisitorID(clientIP(r, a.TrustXFF), r.UserAgent())
	snap, err := a.Visits.RecordVisit(r.Context(), req.DomainName, req.Path, visitorID)
	if err != nil {
		a.fail(w, r, err, req.DomainName, "")
		return
	}
	writeJSON(w, http.StatusOK, countersResponse{DomainName: req.DomainName, Counters: snap})
}

// authenticate resolve a sessão da requisição. Sem sessão válida, responde
// 401 e devolve ok=false.
func (a *API) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}

	userID, err := a.Sessions.Lookup(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return "", false
		}
		a.logf("%s %s: session lookup: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}
	return userID, true
}

// fail traduz erros da camada application para status HTTP. Tudo que não é
// erro sentinela vira 500 genérico, com o detalhe apenas no log.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, domainName, callerID string) {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrDomainRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDomainNotVerified):
		writeError(w, http.StatusBadRequest, domain.ErrDomainNotVerified.Error())
	case errors.Is(err, domain.ErrDomainNotFound):
		writeError(w, http.StatusNotFound, domain.ErrDomainNotFound.Error())
	case errors.Is(err, domain.ErrDomainTaken):
		writeError(w, http.StatusConflict, domain.ErrDomainTaken.Error())
	case errors.Is(err, domain.ErrVerificationFailed):
		writeError(w, http.StatusBadRequest, domain.ErrVerificationFailed.Error())
	default:
		a.logf("%s %s: internal error (domain=%q caller=%q): %v", r.Method, r.URL.Path, domainName, callerID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) logf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func newDomainResponse(d domain.Domain) domainResponse {
	resp := domainResponse{
		DomainName: d.Name,
		Verified:   d.Verified,
	}
	if !d.Verified {
		resp.VerifyToken = d.VerifyToken
		resp.TXTRecord = "_busuanzi." + d.Name + " TXT busuanzi-verify=" + d.VerifyToken
	}
	return resp
}
