package handler

import "net/http"

type addBuddiesRequest struct {
	BuddyIDs []int64 `json:"buddy_ids"`
}

type addBuddiesResponse struct {
	Added int64 `json:"added"`
}

// AddBuddies handles POST /trips/{id}/buddies.
// Re-adding an existing buddy is not an error; added counts new links only.
func (s *Server) AddBuddies(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req addBuddiesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	added, err := s.buddies.AddBuddies(r.Context(), tripID, requesterID, req.BuddyIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addBuddiesResponse{Added: added})
}

// ListBuddies handles GET /trips/{id}/buddies.
func (s *Server) ListBuddies(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	users, err := s.buddies.ListBuddies(r.Context(), tripID, requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
