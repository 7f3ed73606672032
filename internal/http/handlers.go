package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"revenueqa/internal/log"
	"revenueqa/internal/services"
)

// exampleQuestions are shown under the form.
var exampleQuestions = []string{
	"How much revenue did ACME make in March 2023?",
	"How long has Initech been a customer?",
	"How much did Division North make last year?",
	"How many accounts does Jane Doe own?",
}

type indexData struct {
	Stats    services.Stats
	Examples []string
	Question string
	Answer   *services.Answer
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Stats:    s.queries.Stats(),
		Examples: exampleQuestions,
	}

	// Without JavaScript the form falls back to GET /?q=...
	if r.URL.Query().Has("q") {
		question, err := ParseQuestion(r)
		data.Question = question
		switch {
		case err != nil:
			data.Error = err.Error()
		case !s.queries.Ready():
			data.Error = "The revenue table is still loading."
		default:
			if answer, err := s.ask(r.Context(), question); err == nil {
				data.Answer = &answer
			} else {
				data.Error = "Could not answer the question."
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", "index.html")
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// handleAsk answers an HTMX form post with the answer partial.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question, err := ParseQuestion(r)
	if err != nil {
		if errors.Is(err, ErrQuestionTooLong) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		BadRequestError("Invalid request").Write(w)
		return
	}

	answer, err := s.ask(r.Context(), question)
	if err != nil {
		s.writeAskError(w, r, err)
		return
	}

	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	buf, err := s.render("answer.html", answer)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Answer template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		InternalServerError("Could not render the answer").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerAnswerReady(len(answer.Clauses), answer.CacheHit).
		Header("Content-Type", "text/html; charset=utf-8").
		Body(buf).
		Write(w)
}

func (s *Server) writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	if services.IsLoadError(err) {
		ServiceUnavailableError("The revenue table is not available yet. Please try again shortly.").Write(w)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Answer failed",
		log.FieldError, err,
		log.FieldOperation, log.OpAnswer)
	InternalServerError("Could not answer the question").Write(w)
}

// handleAPIAnswer answers GET ?q= or a POSTed question as JSON.
func (s *Server) handleAPIAnswer(w http.ResponseWriter, r *http.Request) {
	question, err := ParseQuestion(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrQuestionTooLong) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	answer, err := s.ask(r.Context(), question)
	if err != nil {
		if services.IsLoadError(err) {
			w.Header().Set("Retry-After", "5")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not answer the question"})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) ask(ctx context.Context, question string) (services.Answer, error) {
	answer, err := s.queries.Ask(ctx, question)
	if err != nil {
		s.appMetrics.failures.Add(1)
		return services.Answer{}, err
	}
	s.appMetrics.questions.Add(1)
	return answer, nil
}

// render executes a template into memory so a failed render never leaves a
// half-written response.
func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleReload loads a fresh table. HTMX callers get a notification, other
// callers the new stats as JSON.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.reloadTimeout)
	defer cancel()

	htmx := r.Header.Get("HX-Request") == "true"

	snap, err := s.queries.Reload(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reload failed",
			log.FieldError, err,
			log.FieldOperation, log.OpReload)
		if htmx {
			NewHTMXResponse().
				Status(http.StatusServiceUnavailable).
				TriggerErrorNotification("Reload failed, still serving the previous table").
				Write(w)
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	s.appMetrics.reloads.Add(1)
	s.logger.InfoContext(r.Context(), "Revenue table reloaded",
		log.FieldVersion, snap.Version,
		log.FieldRows, snap.Table.Len(),
		log.FieldOperation, log.OpReload)

	if htmx {
		NewHTMXResponse().
			TriggerSnapshotReloaded(snap.Version, snap.Table.Len()).
			TriggerSuccessNotification(fmt.Sprintf("Loaded %d rows", snap.Table.Len())).
			Status(http.StatusNoContent).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, s.queries.Stats())
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady reports 503 until a revenue table is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	stats := s.queries.Stats()
	if stats.Ready {
		checks["revenue_table"] = stats
	} else {
		checks["revenue_table"] = "not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	stats := s.queries.Stats()

	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	writeMetric(w, "questions_answered_total", "counter", "Questions answered", s.appMetrics.questions.Load())
	writeMetric(w, "questions_failed_total", "counter", "Questions that could not be answered", s.appMetrics.failures.Load())
	writeMetric(w, "reloads_total", "counter", "Successful table reloads", s.appMetrics.reloads.Load())

	if s.answers != nil {
		cs := s.answers.Stats()
		writeMetric(w, "answer_cache_hits_total", "counter", "Answer cache hits", int64(cs.Hits))
		writeMetric(w, "answer_cache_misses_total", "counter", "Answer cache misses", int64(cs.Misses))
		writeMetric(w, "answer_cache_evictions_total", "counter", "Answer cache evictions", int64(cs.Evictions))
		writeMetric(w, "answer_cache_entries", "gauge", "Current answer cache entries", int64(cs.Size))
	}

	writeMetric(w, "revenue_snapshot_version", "gauge", "Version of the loaded revenue table", int64(stats.SnapshotVersion))
	writeMetric(w, "revenue_rows", "gauge", "Rows in the loaded revenue table", int64(stats.Rows))
	writeMetric(w, "rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	writeMetric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	writeMetric(w, "uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}
