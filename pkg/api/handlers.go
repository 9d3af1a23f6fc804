package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"taxihub/pkg/models"
	"taxihub/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user, tok, err := s.svc.User().Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: tok, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user, tok, err := s.svc.User().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tok, User: user})
}

type createOrderRequest struct {
	PickupLocation string `json:"pickup_location"`
	Destination    string `json:"destination"`
	DriverComment  string `json:"driver_comment"`
	ScheduledTime  *int64 `json:"scheduled_time,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if p.Role != models.RolePassenger {
		http.Error(w, "only passengers create orders", http.StatusForbidden)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PickupLocation == "" || req.Destination == "" {
		http.Error(w, "pickup_location and destination are required", http.StatusBadRequest)
		return
	}

	order, err := s.svc.Order().Create(r.Context(), p.UserID, service.CreateOrderInput{
		PickupLocation: req.PickupLocation,
		Destination:    req.Destination,
		DriverComment:  req.DriverComment,
		ScheduledTime:  req.ScheduledTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.svc.Order().GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleAvailableOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.svc.Order().Find(r.Context(), availableOrdersFilter())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	filter := models.OrderFilter{UserID: p.UserID}
	if p.Role == models.RoleDriver {
		filter = models.OrderFilter{DriverID: p.UserID}
	}
	orders, err := s.svc.Order().Find(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if err := s.svc.Order().Cancel(r.Context(), mux.Vars(r)["id"], p.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if p.Role != models.RoleDriver {
		http.Error(w, "only drivers claim orders", http.StatusForbidden)
		return
	}
	if err := s.svc.Order().Claim(r.Context(), mux.Vars(r)["id"], p.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if err := s.svc.Order().Start(r.Context(), mux.Vars(r)["id"], p.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if err := s.svc.Order().Complete(r.Context(), mux.Vars(r)["id"], p.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDriverStats(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if p.Role != models.RoleDriver {
		http.Error(w, "driver stats are for drivers", http.StatusForbidden)
		return
	}
	stats, err := s.svc.Order().DriverStats(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func availableOrdersFilter() models.OrderFilter {
	return models.OrderFilter{
		Statuses:       []string{models.StatusPending},
		UnassignedOnly: true,
	}
}
