package server

import "net/http"

// ChannelProfileHandler returns the public profile of a channel. An
// authenticated viewer also learns whether they are subscribed to it.
func (s *Server) ChannelProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var viewerID string
		if viewer, ok := currentUser(r.Context()); ok {
			viewerID = viewer.ID
		}

		profile, err := s.subscriptions.ChannelProfile(r.Context(), r.PathValue("username"), viewerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, profile, "Channel fetched successfully.")
	}
}

func (s *Server) SubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		view, err := s.subscriptions.Subscribe(r.Context(), user.ID, r.PathValue("channelID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, view, "Subscribe successfully.")
	}
}

func (s *Server) UnsubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		if err := s.subscriptions.Unsubscribe(r.Context(), user.ID, r.PathValue("channelID")); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, nil, "Unsubscribed successfully.")
	}
}
