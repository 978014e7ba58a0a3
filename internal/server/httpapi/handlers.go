package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/repository"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createAuctionRequest struct {
	ItemDescription string `json:"item_description"`
	StartingPrice   int64  `json:"starting_price"`
	DurationSeconds int64  `json:"duration_seconds"`
	ReservePrice    int64  `json:"reserve_price,omitempty"`
}

type placeBidRequest struct {
	Amount int64 `json:"amount"`
}

type auctionResponse struct {
	ID              string     `json:"id"`
	Seller          string     `json:"seller"`
	ItemDescription string     `json:"item_description"`
	StartingPrice   int64      `json:"starting_price"`
	ReservePrice    int64      `json:"reserve_price,omitempty"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	HighestBid      *model.Bid `json:"highest_bid,omitempty"`
	Winner          string     `json:"winner,omitempty"`
	WinningAmount   int64      `json:"winning_amount"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toAuctionResponse(a *model.Auction) auctionResponse {
	return auctionResponse{
		ID:              a.ID.String(),
		Seller:          a.Seller,
		ItemDescription: a.ItemDescription,
		StartingPrice:   a.StartingPrice,
		ReservePrice:    a.ReservePrice,
		EndTime:         a.EndTime,
		Status:          string(a.Status),
		HighestBid:      a.HighestBid,
		Winner:          a.Winner,
		WinningAmount:   a.WinningAmount,
		CreatedAt:       a.CreatedAt,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed json")
		return
	}
	userID, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Address)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "username taken")
			return
		}
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed json")
		return
	}
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	tokens, user, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, ip)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "bad credentials")
		case errors.Is(err, errs.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate limited")
		default:
			s.writeServiceError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tokens.AccessToken,
		"expires_at":   tokens.ExpiresAt,
		"address":      user.Address,
	})
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller")
		return
	}
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed json")
		return
	}
	a, err := s.auctions.CreateAuction(r.Context(), caller, req.ItemDescription,
		req.StartingPrice, time.Duration(req.DurationSeconds)*time.Second, req.ReservePrice)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuctionResponse(a))
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller")
		return
	}
	id, err := auctionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad auction id")
		return
	}
	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed json")
		return
	}
	bid, err := s.auctions.PlaceBid(r.Context(), id, caller, req.Amount)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

func (s *Server) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.auctions.EndAuction)
}

func (s *Server) handleReleaseFunds(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.auctions.ReleaseFunds)
}

func (s *Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.auctions.CancelAuction)
}

// lifecycle factors the shared shape of end/release/cancel.
func (s *Server) lifecycle(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id uuid.UUID, caller string) (*model.Auction, error),
) {
	caller, ok := callerAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no caller")
		return
	}
	id, err := auctionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad auction id")
		return
	}
	a, err := op(r.Context(), id, caller)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuctionResponse(a))
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	id, err := auctionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad auction id")
		return
	}
	a, err := s.auctions.GetAuction(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuctionResponse(a))
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	f := repository.ListFilter{
		Status: model.AuctionStatus(r.URL.Query().Get("status")),
		Seller: r.URL.Query().Get("seller"),
	}
	as, err := s.auctions.ListAuctions(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]auctionResponse, 0, len(as))
	for i := range as {
		out = append(out, toAuctionResponse(&as[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	id, err := auctionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad auction id")
		return
	}
	bids, err := s.auctions.ListBids(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	writeJSON(w, http.StatusOK, bids)
}

func auctionID(r *http.Request) (uuid.UUID, error) {
	return uuid.FromString(mux.Vars(r)["id"])
}
