package api

import (
	"net/http"

	"github.com/goodtune/screentime/internal/storage"
	"github.com/goodtune/screentime/internal/usage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"timestamp": storage.FormatTimestamp(s.clock.Now()),
	})
}

func (s *Server) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"integrations": usage.Integrations(),
	})
}

func (s *Server) handleBehavior(w http.ResponseWriter, r *http.Request) {
	behavior, err := s.engine.Behavior(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to analyze behavior")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"behavior": behavior})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.engine.Dashboard(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dashboard": dashboard})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.engine.Insights(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to build insights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"insights": insights})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.account.Profile(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to retrieve profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	if _, err := s.account.UpdateProfile(r.Context(), usage.ProfileFromPayload(payload)); err != nil {
		s.fail(w, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.account.Settings(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to retrieve settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	if _, err := s.account.UpdateSettings(r.Context(), usage.SettingsFromPayload(payload)); err != nil {
		s.fail(w, err, "Failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.account.Subscription(r.Context())
	if err != nil {
		s.internalError(w, err, "Failed to retrieve subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscription": sub})
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	sub, err := s.account.UpdatePlan(r.Context(), usage.PlanFromPayload(payload))
	if err != nil {
		s.fail(w, err, "Failed to update subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "plan": sub.Plan})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := usage.BuildExport(r.Context(), s.store.Activity(), s.store.Account())
	if err != nil {
		s.internalError(w, err, "Failed to export data")
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	in, err := usage.SessionFromPayload(payload)
	if err != nil {
		s.fail(w, err, "Failed to record session")
		return
	}
	if _, err := s.recorder.RecordSession(r.Context(), in); err != nil {
		s.fail(w, err, "Failed to record session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"message": "Session recorded",
	})
}

func (s *Server) handleRecordFocusSession(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	focus, err := s.recorder.RecordFocusSession(r.Context(), usage.FocusFromPayload(payload))
	if err != nil {
		s.fail(w, err, "Failed to record focus session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":            true,
		"saved_minutes": focus.CompletedMin,
	})
}

func (s *Server) handleRecordNudge(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	if _, err := s.recorder.RecordNudge(r.Context(), usage.NudgeFromPayload(payload)); err != nil {
		s.fail(w, err, "Failed to record nudge")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true})
}

func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	if err := s.recorder.ResetActivity(r.Context()); err != nil {
		s.internalError(w, err, "Failed to delete activity data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "Activity data deleted",
	})
}

// readPayload decodes the request body, answering 400 when it is not a
// JSON object.
func (s *Server) readPayload(w http.ResponseWriter, r *http.Request) (usage.Payload, bool) {
	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	return payload, true
}

// fail answers validation errors with 400 and their message, anything
// else with 500.
func (s *Server) fail(w http.ResponseWriter, err error, message string) {
	if verr, ok := usage.IsValidation(err); ok {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	s.internalError(w, err, message)
}

func (s *Server) internalError(w http.ResponseWriter, err error, message string) {
	s.logger.Error().Err(err).Msg(message)
	writeError(w, http.StatusInternalServerError, message)
}
