package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/versioning"
	"github.com/shopspring/decimal"
)

type groupResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

func toGroupResponse(g *domain.BucketGroup) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, Position: g.Position}
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Grouping.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	group, err := s.Grouping.Create(r.Context(), req.Name, req.Position)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid group id")
		return
	}
	if err := s.Grouping.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid group id")
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	group, err := s.Grouping.Move(r.Context(), id, req.Delta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toGroupResponse(group))
}

type versionRequest struct {
	Kind      string `json:"kind"`
	Param     int    `json:"param"`
	Amount    string `json:"amount"`
	RefDate   string `json:"refDate"`
	Notes     string `json:"notes"`
	ValidFrom string `json:"validFrom"`
}

// toVersionInput parses the wire representation of a version: the amount
// travels as a string to keep it decimal, months as "YYYY-MM".
func toVersionInput(req versionRequest) (versioning.VersionInput, error) {
	input := versioning.VersionInput{
		Kind:  domain.VersionKind(req.Kind),
		Param: req.Param,
		Notes: req.Notes,
	}
	if input.Kind == "" {
		input.Kind = domain.VersionKindNone
	}
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return input, err
		}
		input.Amount = amount
	}
	if req.RefDate != "" {
		refDate, err := time.Parse("2006-01-02", req.RefDate)
		if err != nil {
			return input, err
		}
		input.RefDate = refDate
	}
	if req.ValidFrom != "" {
		validFrom, err := domain.ParseMonth(req.ValidFrom)
		if err != nil {
			return input, err
		}
		input.ValidFrom = validFrom
	}
	return input, nil
}

type bucketResponse struct {
	ID             uuid.UUID    `json:"id"`
	GroupID        uuid.UUID    `json:"groupId"`
	Name           string       `json:"name"`
	Color          string       `json:"color,omitempty"`
	TextColor      string       `json:"textColor,omitempty"`
	ValidFrom      domain.Month `json:"validFrom"`
	IsInactive     bool         `json:"isInactive"`
	IsInactiveFrom string       `json:"isInactiveFrom,omitempty"`
}

func toBucketResponse(b *domain.Bucket) bucketResponse {
	resp := bucketResponse{
		ID:         b.ID,
		GroupID:    b.GroupID,
		Name:       b.Name,
		Color:      b.Color,
		TextColor:  b.TextColor,
		ValidFrom:  b.ValidFrom,
		IsInactive: b.IsInactive,
	}
	if b.IsInactive {
		resp.IsInactiveFrom = b.IsInactiveFrom.String()
	}
	return resp
}

type versionResponse struct {
	Version   int          `json:"version"`
	Kind      string       `json:"kind"`
	Param     int          `json:"param"`
	Amount    string       `json:"amount"`
	RefDate   string       `json:"refDate,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	ValidFrom domain.Month `json:"validFrom"`
}

func toVersionResponse(v *domain.BucketVersion) versionResponse {
	resp := versionResponse{
		Version:   v.Version,
		Kind:      string(v.Kind),
		Param:     v.Param,
		Amount:    v.Amount.String(),
		Notes:     v.Notes,
		ValidFrom: v.ValidFrom,
	}
	if !v.RefDate.IsZero() {
		resp.RefDate = v.RefDate.Format("2006-01-02")
	}
	return resp
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	month, err := s.queryMonth(r)
	if err != nil {
		s.writeBadRequest(w, "invalid month")
		return
	}

	active, err := s.Versioning.ActiveBuckets(r.Context(), month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type activeBucketResponse struct {
		Bucket  bucketResponse  `json:"bucket"`
		Version versionResponse `json:"version"`
	}
	out := make([]activeBucketResponse, 0, len(active))
	for _, ab := range active {
		out = append(out, activeBucketResponse{
			Bucket:  toBucketResponse(ab.Bucket),
			Version: toVersionResponse(ab.Version),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string         `json:"name"`
		GroupID   string         `json:"groupId"`
		Color     string         `json:"color"`
		TextColor string         `json:"textColor"`
		ValidFrom string         `json:"validFrom"`
		Version   versionRequest `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		s.writeBadRequest(w, "invalid group id")
		return
	}
	validFrom, err := domain.ParseMonth(req.ValidFrom)
	if err != nil {
		s.writeBadRequest(w, "invalid validFrom month")
		return
	}
	version, err := toVersionInput(req.Version)
	if err != nil {
		s.writeBadRequest(w, "invalid version: "+err.Error())
		return
	}

	bucket, err := s.Versioning.CreateBucket(r.Context(), versioning.CreateBucketInput{
		Name:      req.Name,
		GroupID:   groupID,
		Color:     req.Color,
		TextColor: req.TextColor,
		ValidFrom: validFrom,
		Version:   version,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toBucketResponse(bucket))
}

func (s *Server) handleUpdateBucket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid bucket id")
		return
	}
	var req struct {
		Name      string         `json:"name"`
		GroupID   string         `json:"groupId"`
		Color     string         `json:"color"`
		TextColor string         `json:"textColor"`
		Version   versionRequest `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	input := versioning.UpdateBucketInput{
		BucketID:  id,
		Name:      req.Name,
		Color:     req.Color,
		TextColor: req.TextColor,
	}
	if req.GroupID != "" {
		groupID, err := uuid.Parse(req.GroupID)
		if err != nil {
			s.writeBadRequest(w, "invalid group id")
			return
		}
		input.GroupID = groupID
	}
	version, err := toVersionInput(req.Version)
	if err != nil {
		s.writeBadRequest(w, "invalid version: "+err.Error())
		return
	}
	input.Version = version

	bucket, err := s.Versioning.UpdateBucket(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBucketResponse(bucket))
}

func (s *Server) handleCloseBucket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid bucket id")
		return
	}
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	month, err := domain.ParseMonth(req.Month)
	if err != nil {
		s.writeBadRequest(w, "invalid month")
		return
	}

	result, err := s.Lifecycle.Close(r.Context(), id, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := map[string]any{"deleted": result.Deleted}
	if !result.Deleted {
		resp["inactiveFrom"] = result.InactiveFrom.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid bucket id")
		return
	}
	if err := s.Lifecycle.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeBadRequest(w, "invalid bucket id")
		return
	}
	month, err := s.queryMonth(r)
	if err != nil {
		s.writeBadRequest(w, "invalid month")
		return
	}
	withBalance := r.URL.Query().Get("balance") != "false"

	figures, err := s.Balance.Figures(r.Context(), id, month, withBalance)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := map[string]any{
		"input":  figures.Input.String(),
		"output": figures.Output.String(),
	}
	if figures.Balance != nil {
		resp["balance"] = figures.Balance.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	month, err := domain.ParseMonth(req.Month)
	if err != nil {
		s.writeBadRequest(w, "invalid month")
		return
	}

	created, err := s.Distribution.Distribute(r.Context(), month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "budget distributed", "month", month.String(), "movements", created)
	s.writeJSON(w, http.StatusOK, map[string]any{"movements": created})
}

// queryMonth extracts the query month, defaulting to the current one.
func (s *Server) queryMonth(r *http.Request) (domain.Month, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return domain.ThisMonth(), nil
	}
	return domain.ParseMonth(v)
}
