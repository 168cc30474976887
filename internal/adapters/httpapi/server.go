package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/ride-hail-api/internal/app/accounts"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/rides"
	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	Accounts *accounts.Service
	Rides    *rides.Service
	// Idem is optional; nil disables Idempotency-Key handling.
	Idem idempotency.Store

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type ServerOption func(*Server)

func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithServerMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

func NewServer(accountsSvc *accounts.Service, ridesSvc *rides.Service, idem idempotency.Store, opts ...ServerOption) *Server {
	s := &Server{
		Accounts: accountsSvc,
		Rides:    ridesSvc,
		Idem:     idem,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var body SignupRequest
	if !decodeBody(w, r, &body) {
		return
	}

	in := accounts.SignupInput{
		Name:       body.Name,
		Email:      body.Email,
		NationalID: body.NationalId,
		CarPlate:   stringPtrFromNullable(body.CarPlate),
	}
	if body.IsPassenger != nil {
		in.IsPassenger = *body.IsPassenger
	}
	if body.IsDriver != nil {
		in.IsDriver = *body.IsDriver
	}

	out, err := s.Accounts.Signup(r.Context(), in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SignupResponse{AccountId: string(out.AccountID)})
}

func (s *Server) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := bindUUIDPathParam(w, r, "accountId")
	if !ok {
		return
	}
	a, found, err := s.Accounts.GetAccount(r.Context(), domain.AccountID(id.String()))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !found {
		e := accounts.ErrAccountNotFound
		writeError(w, r, e.Status, e.Code, e.Message, nil)
		return
	}
	writeJSON(w, http.StatusOK, GetAccountResponse{Account: accountFromDomain(a)})
}

func (s *Server) RequestRide(w http.ResponseWriter, r *http.Request) {
	var body RequestRideRequest
	if !decodeBody(w, r, &body) {
		return
	}
	missing := map[string]any{}
	for field, v := range map[string]*float64{
		"fromLat":  body.FromLat,
		"fromLong": body.FromLong,
		"toLat":    body.ToLat,
		"toLong":   body.ToLong,
	} {
		if v == nil {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing coordinates", missing)
		return
	}

	id, err := s.Rides.RequestRide(r.Context(), rides.RequestRideInput{
		AccountID: domain.AccountID(body.AccountId),
		From:      domain.Coordinate{Lat: *body.FromLat, Long: *body.FromLong},
		To:        domain.Coordinate{Lat: *body.ToLat, Long: *body.ToLong},
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, RequestRideResponse{RideId: string(id)})
}

func (s *Server) GetRide(w http.ResponseWriter, r *http.Request) {
	id, ok := bindUUIDPathParam(w, r, "rideId")
	if !ok {
		return
	}
	ride, found, err := s.Rides.GetRide(r.Context(), domain.RideID(id.String()))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !found {
		e := rides.ErrRideNotFound
		writeError(w, r, e.Status, e.Code, e.Message, nil)
		return
	}
	writeJSON(w, http.StatusOK, GetRideResponse{Ride: rideFromDomain(ride)})
}

func (s *Server) ValidateNationalId(w http.ResponseWriter, r *http.Request) {
	var body ValidateNationalIdRequest
	if !decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, ValidateNationalIdResponse{Valid: domain.ValidateNationalID(body.NationalId)})
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body too large", nil)
			return false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", msg, map[string]any{"body": err.Error()})
		return false
	}
	return true
}

func bindUUIDPathParam(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PATH_PARAM", "invalid "+name, map[string]any{name: "must be a UUID"})
		return id, false
	}
	return id, true
}

func stringPtrFromNullable(n nullable.Nullable[string]) *string {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}

func nullableString(p *string) nullable.Nullable[string] {
	if p == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(*p)
}

func accountFromDomain(a domain.Account) Account {
	return Account{
		AccountId:   string(a.ID),
		Name:        a.Name,
		Email:       a.Email,
		NationalId:  a.NationalID,
		CarPlate:    nullableString(a.CarPlate),
		IsPassenger: a.IsPassenger,
		IsDriver:    a.IsDriver,
	}
}

func rideFromDomain(r domain.Ride) Ride {
	return Ride{
		RideId:      string(r.ID),
		PassengerId: string(r.PassengerID),
		Status:      r.Status.String(),
		FromLat:     r.From.Lat,
		FromLong:    r.From.Long,
		ToLat:       r.To.Lat,
		ToLong:      r.To.Long,
		Date:        r.Date.UTC(),
	}
}
