package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/schema"
)

// GET /pipeline/rules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.configStore.ListRules(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// POST /pipeline/rules
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule cleaning.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: decoding rule: %v", errBadRequest, err))
		return
	}
	if err := validateRuleInput(rule); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.configStore.CreateRule(r.Context(), rule)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// PUT /pipeline/rules/{ruleID}/active
func (s *Server) handleSetRuleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.int64Param(w, r, "ruleID")
	if !ok {
		return
	}
	var body struct {
		Active bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: decoding body: %v", errBadRequest, err))
		return
	}

	if err := s.configStore.SetRuleActive(r.Context(), id, body.Active); err != nil {
		s.respondError(w, r, err)
		return
	}
	rule, err := s.configStore.GetRule(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

// DELETE /pipeline/rules/{ruleID}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.int64Param(w, r, "ruleID")
	if !ok {
		return
	}
	if err := s.configStore.DeleteRule(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /pipeline/aliases
func (s *Server) handleListAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := s.configStore.ListAliases(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"aliases": aliases})
}

// POST /pipeline/aliases
func (s *Server) handleCreateAlias(w http.ResponseWriter, r *http.Request) {
	var m alias.Mapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: decoding alias: %v", errBadRequest, err))
		return
	}
	if m.CsvAlias == "" {
		s.respondError(w, r, fmt.Errorf("%w: csvAlias must not be empty", errBadRequest))
		return
	}
	if !schema.IsCanonical(m.AssetField) {
		s.respondError(w, r, fmt.Errorf("%w: %q is not an asset field", errBadRequest, m.AssetField))
		return
	}
	if m.Confidence < 0 || m.Confidence > 100 {
		s.respondError(w, r, fmt.Errorf("%w: confidence must be 0-100", errBadRequest))
		return
	}

	created, err := s.configStore.CreateAlias(r.Context(), m)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DELETE /pipeline/aliases/{aliasID}
func (s *Server) handleDeleteAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := s.int64Param(w, r, "aliasID")
	if !ok {
		return
	}
	if err := s.configStore.DeleteAlias(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateRuleInput rejects rule configurations the engine could only
// degrade to pass-through.
func validateRuleInput(rule cleaning.Rule) error {
	if !schema.IsCanonical(rule.Field) {
		return fmt.Errorf("%w: %q is not an asset field", errBadRequest, rule.Field)
	}
	if !cleaning.IsValidRuleType(rule.Type) {
		return fmt.Errorf("%w: unknown rule type %q", errBadRequest, rule.Type)
	}
	switch rule.Type {
	case cleaning.RuleRegexReplace:
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: invalid pattern: %v", errBadRequest, err)
		}
	case cleaning.RuleExactMatch, cleaning.RuleFuzzyMatch:
		if len(rule.Terms) == 0 {
			return fmt.Errorf("%w: %s rules need at least one term", errBadRequest, rule.Type)
		}
	case cleaning.RuleDataTypeCheck:
		switch rule.DataType {
		case "number", "boolean", "date":
		default:
			return fmt.Errorf("%w: dataType must be number, boolean or date", errBadRequest)
		}
	}
	return nil
}

// int64Param extracts a numeric path parameter.
func (s *Server) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, r, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw))
		return 0, false
	}
	return id, true
}
