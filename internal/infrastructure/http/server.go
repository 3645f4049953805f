package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

// Server translates HTTP requests into application calls and typed failures
// into status codes. No business logic lives here.
type Server struct {
	rates  *application.RatesService
	ledger *application.LedgerService
	auth   *application.AuthService
}

func NewServer(rates *application.RatesService, ledger *application.LedgerService, auth *application.AuthService) *Server {
	return &Server{rates: rates, ledger: ledger, auth: auth}
}

type quotePayload struct {
	Pair      string    `json:"pair"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
}

func toQuotePayload(q domain.Quote) quotePayload {
	return quotePayload{Pair: q.Pair.Key(), Rate: q.Rate, UpdatedAt: q.UpdatedAt, Source: q.Source}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	count, err := s.rates.RequestRefresh(r.Context(), r.URL.Query().Get("source"), r.Header.Get("X-Idempotency-Key"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": count})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	top := 0
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}
	cached, err := s.rates.CachedRates(r.Context(), r.URL.Query().Get("currency"), top)
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := struct {
		LastRefresh *time.Time     `json:"last_refresh"`
		Pairs       []quotePayload `json:"pairs"`
	}{LastRefresh: cached.LastRefresh, Pairs: []quotePayload{}}
	for _, q := range cached.Quotes {
		resp.Pairs = append(resp.Pairs, toQuotePayload(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	q, err := s.rates.GetRate(r.Context(), chi.URLParam(r, "from"), chi.URLParam(r, "to"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotePayload(q))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.auth.Register(r.Context(), body.Username, body.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{UserID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: user.ID, Username: user.Username})
}

type tradeRequest struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type tradeResponse struct {
	Pair      string             `json:"pair"`
	Amount    float64            `json:"amount"`
	Rate      float64            `json:"rate"`
	Total     float64            `json:"total"`
	Wallets   map[string]float64 `json:"wallets"`
	Operation string             `json:"operation"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request)  { s.handleTrade(w, r, true) }
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) { s.handleTrade(w, r, false) }

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, buy bool) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var body tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		res application.TradeResult
		err error
		op  = "sell"
	)
	if buy {
		op = "buy"
		res, err = s.ledger.Buy(r.Context(), userID, body.Currency, body.Amount)
	} else {
		res, err = s.ledger.Sell(r.Context(), userID, body.Currency, body.Amount)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}

	wallets := make(map[string]float64, len(res.Portfolio.Wallets))
	for code, wallet := range res.Portfolio.Wallets {
		wallets[code] = wallet.Balance
	}
	writeJSON(w, http.StatusOK, tradeResponse{
		Pair:      res.Pair.Key(),
		Amount:    res.Amount,
		Rate:      res.Rate,
		Total:     res.Total,
		Wallets:   wallets,
		Operation: op,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	view, err := s.ledger.Portfolio(r.Context(), userID, r.URL.Query().Get("base"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeFailure maps typed application failures onto status codes.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCurrencyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateUnavailable):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateStale):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrDuplicateRequest),
		errors.Is(err, application.ErrRefreshInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
